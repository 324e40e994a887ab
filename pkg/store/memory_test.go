package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

func TestMemoryStore_HoldsCopies(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	devices := sampleDevices(t)
	s := NewMemoryStore()
	require.NoError(t, s.SaveAll(ctx, devices))
	assert.Equal(t, 1, s.Saves())

	// mutating the saved instances does not reach the store
	require.NoError(t, devices[0].TurnOff())

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.True(t, loaded[0].IsOn())

	require.NoError(t, loaded[0].SetName("Changed"))
	again, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Apple Watch", again[0].Name())
}

func TestMemoryStore_Seed(t *testing.T) {
	common.SetTestLoggerNop()

	w, err := device.NewSmartwatch("1", "Watch", false, 50)
	require.NoError(t, err)

	loaded, err := NewMemoryStore(w).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "SW-1,Watch,False,50%", loaded[0].String())
}
