package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/device-manager-service/pkg/common"
)

func TestYAMLStore_RoundTrip(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "devices.yaml")
	s := NewYAMLStore(path)

	devices := sampleDevices(t)
	require.NoError(t, s.SaveAll(ctx, devices))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Device catalog"))
	assert.Contains(t, string(data), "version: 1")
	assert.Contains(t, string(data), "battery_percentage: 40")

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, records(devices), records(loaded))
}

func TestYAMLStore_SkipsInvalidRecords(t *testing.T) {
	common.SetTestLoggerNop()

	path := filepath.Join(t.TempDir(), "devices.yaml")
	content := `version: 1
devices:
  - kind: Smartwatch
    id: "1"
    name: Watch
    is_on: false
    battery_percentage: 70
  - kind: Smartwatch
    id: "2"
    name: No Battery
    is_on: false
  - kind: Toaster
    id: "3"
    name: Toast
  - kind: EmbeddedDevice
    id: "4"
    name: Pi
    is_on: true
    ip_address: 10.0.0.4
    network_name: MD Ltd.Lab
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := NewYAMLStore(path).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "SW-1,Watch,False,70%", loaded[0].String())
	assert.Equal(t, "ED-4,Pi,True,10.0.0.4,MD Ltd.Lab", loaded[1].String())
}

func TestYAMLStore_Errors(t *testing.T) {
	common.SetTestLoggerNop()
	dir := t.TempDir()

	loaded, err := NewYAMLStore(filepath.Join(dir, "absent.yaml")).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	future := filepath.Join(dir, "future.yaml")
	require.NoError(t, os.WriteFile(future, []byte("version: 2\ndevices: []\n"), 0o644))
	_, err = NewYAMLStore(future).LoadAll(context.Background())
	assert.ErrorContains(t, err, "unsupported device file version")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("devices: [unterminated\n"), 0o644))
	_, err = NewYAMLStore(broken).LoadAll(context.Background())
	assert.ErrorContains(t, err, "failed to parse device file")
}
