package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/db"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/models"
	"liyu1981.xyz/device-manager-service/pkg/registry"
)

func newMemoryDB(t *testing.T) *db.DB {
	t.Helper()
	instance, err := db.New(db.UseMemorySqliteDialector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = instance.Close() })
	return instance
}

func TestSQLStore_RoundTrip(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	s := NewSQLStore(newMemoryDB(t))

	loaded, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Equal(t, int64(0), s.Revision())

	devices := sampleDevices(t)
	require.NoError(t, s.SaveAll(ctx, devices))
	assert.Equal(t, int64(1), s.Revision())

	loaded, err = s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, records(devices), records(loaded))

	// a save replaces the previous rows
	require.NoError(t, s.SaveAll(ctx, devices[:2]))
	var count int64
	require.NoError(t, s.Db.Conn.Model(&models.DeviceRecord{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(2), s.Revision())
}

func TestSQLStore_NullableVariantColumns(t *testing.T) {
	common.SetTestLoggerNop()

	s := NewSQLStore(newMemoryDB(t))
	require.NoError(t, s.SaveAll(context.Background(), sampleDevices(t)))

	var row models.DeviceRecord
	require.NoError(t, s.Db.Conn.Where("kind = ? AND device_id = ?", "PersonalComputer", "P-2").First(&row).Error)
	assert.Nil(t, row.OperatingSystem)
	assert.Nil(t, row.BatteryPercentage)
	assert.Nil(t, row.IpAddress)
	assert.Equal(t, 3, row.Position)
}

func TestSQLStore_StaleRevision(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	instance := newMemoryDB(t)
	first := NewSQLStore(instance)
	second := NewSQLStore(instance)

	_, err := first.LoadAll(ctx)
	require.NoError(t, err)
	_, err = second.LoadAll(ctx)
	require.NoError(t, err)

	devices := sampleDevices(t)
	require.NoError(t, first.SaveAll(ctx, devices))

	err = second.SaveAll(ctx, devices[:1])
	assert.ErrorIs(t, err, ErrStaleRevision)

	// nothing was written by the rejected save
	loaded, err := second.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, len(devices))

	require.NoError(t, second.SaveAll(ctx, devices[:1]))
	assert.ErrorIs(t, first.SaveAll(ctx, devices), ErrStaleRevision)
}

func TestSQLStore_SkipsInvalidRows(t *testing.T) {
	common.SetTestLoggerNop()

	s := NewSQLStore(newMemoryDB(t))
	require.NoError(t, s.Db.Conn.Create(&models.DeviceRecord{
		Position: 0, Kind: "Smartwatch", DeviceID: "1", Name: "No battery",
	}).Error)

	loaded, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSQLStore_BacksRegistry(t *testing.T) {
	common.SetTestLoggerNop()
	ctx := context.Background()

	instance := newMemoryDB(t)
	r := registry.New(NewSQLStore(instance), registry.Opts{})
	require.NoError(t, r.Load(ctx))

	w, err := device.NewSmartwatch("1", "Apple Watch", false, 50)
	require.NoError(t, err)
	require.NoError(t, r.Add(ctx, w))
	require.NoError(t, r.TurnOn(ctx, "1", device.KindSmartwatch))

	reopened := registry.New(NewSQLStore(instance), registry.Opts{})
	require.NoError(t, reopened.Load(ctx))
	d, err := reopened.Get("1", device.KindSmartwatch)
	require.NoError(t, err)
	assert.Equal(t, "SW-1,Apple Watch,True,40%", d.String())
}
