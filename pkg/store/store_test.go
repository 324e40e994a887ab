package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	"liyu1981.xyz/device-manager-service/pkg/device"
	_ "liyu1981.xyz/device-manager-service/pkg/testing"
)

// sampleDevices covers every kind, both power states and an empty OS.
func sampleDevices(t *testing.T) []device.Device {
	t.Helper()

	w, err := device.NewSmartwatch("1", "Apple Watch", true, 40)
	require.NoError(t, err)
	low, err := device.NewSmartwatch("2", "Old Watch", false, 12)
	require.NoError(t, err)
	pc, err := device.NewPersonalComputer("1", "Office PC", true, "Windows 11")
	require.NoError(t, err)
	bare, err := device.NewPersonalComputer("P-2", "Spare PC", false, "")
	require.NoError(t, err)
	ed, err := device.NewEmbeddedDevice("1", "Pi3", false, "192.168.0.3", "MD Ltd.Wifi-1")
	require.NoError(t, err)

	return []device.Device{w, low, pc, bare, ed}
}

func records(devices []device.Device) []device.Record {
	out := make([]device.Record, len(devices))
	for i, d := range devices {
		out[i] = device.ToRecord(d)
	}
	return out
}
