package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetwork = "MD Ltd.Wifi-1"

func newTestEmbedded(t *testing.T) *EmbeddedDevice {
	t.Helper()
	ed, err := NewEmbeddedDevice("1", "Pi3", false, "192.168.1.44", testNetwork)
	require.NoError(t, err)
	return ed
}

func TestEmbeddedDevice_IpAddress(t *testing.T) {
	ed := newTestEmbedded(t)

	valid := []string{"0.0.0.0", "255.255.255.255", "10.0.0.1", "192.168.1.1", " 172.16.0.9 "}
	for _, ip := range valid {
		assert.NoError(t, ed.SetIpAddress(ip), "ip %q", ip)
	}
	assert.Equal(t, "172.16.0.9", ed.IpAddress())

	invalid := []string{
		"", "256.1.1.1", "1.256.1.1", "1.1.1.300", "1.2.3", "1.2.3.4.5",
		"a.b.c.d", "1..2.3", "1.2.3.-1", "1.2.3.4/24", "localhost",
	}
	for _, ip := range invalid {
		assert.ErrorIs(t, ed.SetIpAddress(ip), ErrInvalidField, "ip %q", ip)
		assert.Equal(t, "172.16.0.9", ed.IpAddress())
	}

	_, err := NewEmbeddedDevice("2", "Pi4", false, "999.0.0.1", testNetwork)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestEmbeddedDevice_NetworkName(t *testing.T) {
	ed := newTestEmbedded(t)

	for _, bad := range []string{"Home Wifi", "MD Ltd", "md ltd.", ""} {
		err := ed.SetNetworkName(bad)
		assert.ErrorIs(t, err, ErrInvalidField, "network %q", bad)
		assert.Equal(t, testNetwork, ed.NetworkName())
	}

	err := ed.SetNetworkName("Home Wifi")
	assert.ErrorIs(t, err, ErrUnauthorizedNetwork)

	require.NoError(t, ed.SetNetworkName("Guest MD Ltd. 5G"))
	assert.Equal(t, "Guest MD Ltd. 5G", ed.NetworkName())

	_, err = NewEmbeddedDevice("2", "Pi4", true, "10.0.0.2", "Cafe")
	assert.ErrorIs(t, err, ErrUnauthorizedNetwork)
}

func TestEmbeddedDevice_TurnOn(t *testing.T) {
	ed := newTestEmbedded(t)

	require.NoError(t, ed.TurnOn())
	assert.True(t, ed.IsOn())
	assert.ErrorIs(t, ed.TurnOn(), ErrAlreadyOn)

	// the precondition still guards a device whose network bypassed the setter
	c := ed.Clone().(*EmbeddedDevice)
	require.NoError(t, c.TurnOff())
	c.networkName = "Cafe"
	assert.ErrorIs(t, c.TurnOn(), ErrUnauthorizedNetwork)
	assert.False(t, c.IsOn())
	assert.True(t, ed.IsOn())
}
