package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	t.Setenv(EnvKeyIOTStoreType, "")
	t.Setenv(EnvKeyIOTStorePath, "")
	t.Setenv(EnvKeyIOTHttpHostPort, "")
	t.Setenv(EnvKeyIOTGrpcHostPort, "")
	t.Setenv(EnvKeyIOTCapacity, "")
	t.Setenv(EnvKeyIOTMqttBroker, "")
	t.Setenv(EnvKeyIOTDefaultRate, "5")
	t.Setenv(EnvKeyIOTDefaultBurst, "10")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, StoreTypeFile, s.StoreType)
	assert.Equal(t, DefaultStorePath, s.StorePath)
	assert.Equal(t, DefaultHttpHostPort, s.HttpHostPort)
	assert.Equal(t, "", s.GrpcHostPort)
	assert.Equal(t, 0, s.Capacity)
	assert.Equal(t, 5.0, s.DefaultRate)
	assert.Equal(t, 10, s.DefaultBurst)
	assert.Equal(t, DefaultMqttClientID, s.MqttClientID)
	assert.Equal(t, DefaultMqttTopicPrefix, s.MqttTopicPrefix)
}

func TestLoadSettings_EdgeCases(t *testing.T) {
	t.Setenv(EnvKeyIOTDefaultRate, "5")
	t.Setenv(EnvKeyIOTDefaultBurst, "10")

	{
		t.Setenv(EnvKeyIOTStoreType, "postgres")
		_, err := LoadSettings()
		assert.ErrorContains(t, err, "unknown IOT_STORE_TYPE")
		t.Setenv(EnvKeyIOTStoreType, StoreTypeSqlite)
	}

	{
		t.Setenv(EnvKeyIOTCapacity, "-1")
		_, err := LoadSettings()
		assert.ErrorContains(t, err, "invalid IOT_CAPACITY")
		t.Setenv(EnvKeyIOTCapacity, "20")
		s, err := LoadSettings()
		require.NoError(t, err)
		assert.Equal(t, 20, s.Capacity)
	}

	{
		t.Setenv(EnvKeyIOTDefaultRate, "fast")
		_, err := LoadSettings()
		assert.ErrorContains(t, err, "IOT_DEFAULT_RATE")
		t.Setenv(EnvKeyIOTDefaultRate, "5")
	}

	{
		t.Setenv(EnvKeyIOTDefaultBurst, "")
		_, err := LoadSettings()
		assert.ErrorContains(t, err, "IOT_DEFAULT_BURST")
	}
}
