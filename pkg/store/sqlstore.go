package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/db"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/models"
)

const catalogRevisionID = 1

// SQLStore keeps the catalog in device_records, guarded by an optimistic
// revision in catalog_revisions. A store only saves over the revision it last
// loaded or saved.
type SQLStore struct {
	Db db.DB

	mu       sync.Mutex
	revision int64
}

func NewSQLStore(d *db.DB) *SQLStore {
	return &SQLStore{Db: *d}
}

// Revision is the catalog revision this store last observed.
func (s *SQLStore) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *SQLStore) LoadAll(ctx context.Context) ([]device.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := common.GetCategoryLogger(common.LoggerNameStore, common.LoggerCategoryLoad)

	var rows []models.DeviceRecord
	var revision int64
	err := s.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if revision, err = currentRevision(tx); err != nil {
			return err
		}
		return tx.Order("position asc").Find(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load device records: %w", err)
	}
	s.revision = revision

	devices := make([]device.Device, 0, len(rows))
	for _, row := range rows {
		d, err := device.FromRecord(rowToRecord(row))
		if err != nil {
			logger.Warn("Skipping invalid device row",
				zap.Uint("row", row.ID),
				zap.String("kind", row.Kind),
				zap.String("id", row.DeviceID),
				zap.Error(err))
			continue
		}
		devices = append(devices, d)
	}

	logger.Info("Device records loaded", zap.Int("count", len(devices)), zap.Int64("revision", revision))
	return devices, nil
}

// SaveAll replaces every row in one transaction and bumps the revision. It
// fails with ErrStaleRevision, writing nothing, when the stored revision is
// not the one this store expects.
func (s *SQLStore) SaveAll(ctx context.Context, devices []device.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]models.DeviceRecord, len(devices))
	for i, d := range devices {
		rows[i] = recordToRow(i, device.ToRecord(d))
	}

	next := s.revision + 1
	err := s.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := currentRevision(tx)
		if err != nil {
			return err
		}
		if current != s.revision {
			return fmt.Errorf("%w: expected %d, found %d", ErrStaleRevision, s.revision, current)
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.DeviceRecord{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		return tx.Save(&models.CatalogRevision{
			ID:        catalogRevisionID,
			Revision:  next,
			UpdatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		common.GetCategoryLogger(common.LoggerNameStore, common.LoggerCategoryPersist).
			Error("Saving device records failed", zap.Int64("revision", s.revision), zap.Error(err))
		return err
	}

	s.revision = next
	return nil
}

func currentRevision(tx *gorm.DB) (int64, error) {
	var rev models.CatalogRevision
	if err := tx.Where("id = ?", catalogRevisionID).Limit(1).Find(&rev).Error; err != nil {
		return 0, err
	}
	return rev.Revision, nil
}

func recordToRow(position int, r device.Record) models.DeviceRecord {
	return models.DeviceRecord{
		Position:          position,
		Kind:              r.Kind.String(),
		DeviceID:          r.ID,
		Name:              r.Name,
		IsOn:              r.IsOn,
		BatteryPercentage: r.BatteryPercentage,
		OperatingSystem:   r.OperatingSystem,
		IpAddress:         r.IpAddress,
		NetworkName:       r.NetworkName,
	}
}

func rowToRecord(row models.DeviceRecord) device.Record {
	return device.Record{
		Kind:              device.Kind(row.Kind),
		ID:                row.DeviceID,
		Name:              row.Name,
		IsOn:              row.IsOn,
		BatteryPercentage: row.BatteryPercentage,
		OperatingSystem:   row.OperatingSystem,
		IpAddress:         row.IpAddress,
		NetworkName:       row.NetworkName,
	}
}
