package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/device-manager-service/pkg/common"
)

func allKinds(t *testing.T) []Device {
	t.Helper()
	w, err := NewSmartwatch("1", "Watch", false, 80)
	require.NoError(t, err)
	pc, err := NewPersonalComputer("1", "PC", false, "Linux")
	require.NoError(t, err)
	ed, err := NewEmbeddedDevice("1", "Pi", false, "10.0.0.1", testNetwork)
	require.NoError(t, err)
	return []Device{w, pc, ed}
}

func TestPower_AlreadyOnLeavesDeviceUnchanged(t *testing.T) {
	common.SetTestLoggerNop()

	for _, d := range allKinds(t) {
		require.NoError(t, d.TurnOn(), d.Kind())
		before := ToRecord(d)

		assert.ErrorIs(t, d.TurnOn(), ErrAlreadyOn, d.Kind())
		assert.Equal(t, before, ToRecord(d), d.Kind())
	}
}

func TestPower_AlreadyOff(t *testing.T) {
	common.SetTestLoggerNop()

	for _, d := range allKinds(t) {
		assert.ErrorIs(t, d.TurnOff(), ErrAlreadyOff, d.Kind())
		assert.False(t, d.IsOn())
	}
}

func TestPower_ForceOff(t *testing.T) {
	common.SetTestLoggerNop()

	for _, d := range allKinds(t) {
		require.NoError(t, d.TurnOn())
		ForceOff(d)
		assert.False(t, d.IsOn(), d.Kind())
		// ForceOff is not a transition: the machine accepts turn_on again
		assert.NoError(t, d.TurnOn(), d.Kind())
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"Smartwatch":       KindSmartwatch,
		"sw":               KindSmartwatch,
		"SW":               KindSmartwatch,
		"PersonalComputer": KindPersonalComputer,
		"pc":               KindPersonalComputer,
		"P":                KindPersonalComputer,
		"embeddeddevice":   KindEmbeddedDevice,
		" ED ":             KindEmbeddedDevice,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("toaster")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Equal(t, "SW", KindSmartwatch.Tag())
	assert.Equal(t, "P", KindPersonalComputer.Tag())
	assert.Equal(t, "ED", KindEmbeddedDevice.Tag())
	assert.Equal(t, "", Kind("Toaster").Tag())
}
