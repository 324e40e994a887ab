package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/store"
	_ "liyu1981.xyz/device-manager-service/pkg/testing"
)

func TestOpenStore(t *testing.T) {
	common.SetTestLoggerNop()
	dir := t.TempDir()

	cases := map[string]any{
		common.StoreTypeFile:         &store.TextFileStore{},
		common.StoreTypeYaml:         &store.YAMLStore{},
		common.StoreTypeMemory:       &store.MemoryStore{},
		common.StoreTypeMemorySqlite: &store.SQLStore{},
	}

	for storeType, want := range cases {
		settings := &common.Settings{StoreType: storeType, StorePath: filepath.Join(dir, storeType+".txt")}

		s, dbInstance, err := openStore(settings)
		require.NoError(t, err, storeType)
		assert.IsType(t, want, s, storeType)
		assert.Equal(t, storeType == common.StoreTypeMemorySqlite, dbInstance != nil, storeType)

		watch, err := device.NewSmartwatch("1", "Watch", false, 50)
		require.NoError(t, err)
		require.NoError(t, s.SaveAll(context.Background(), []device.Device{watch}), storeType)

		loaded, err := s.LoadAll(context.Background())
		require.NoError(t, err, storeType)
		require.Len(t, loaded, 1, storeType)
		assert.Equal(t, "SW-1,Watch,False,50%", loaded[0].String())

		if dbInstance != nil {
			require.NoError(t, dbInstance.Close())
		}
	}

	_, _, err := openStore(&common.Settings{StoreType: "carrier-pigeon"})
	assert.Error(t, err)
}
