package models

import "time"

type AlertType string

const (
	AlertTypeBattery AlertType = "battery"
)

// DeviceRecord is one persisted device. Variant columns are NULL when they do
// not apply to Kind.
type DeviceRecord struct {
	ID                uint   `gorm:"primaryKey"`
	Position          int    `gorm:"index"`
	Kind              string `gorm:"type:varchar(20);uniqueIndex:idx_kind_device;check:kind IN ('Smartwatch','PersonalComputer','EmbeddedDevice')"`
	DeviceID          string `gorm:"uniqueIndex:idx_kind_device"`
	Name              string
	IsOn              bool
	BatteryPercentage *int
	OperatingSystem   *string
	IpAddress         *string
	NetworkName       *string
}

// CatalogRevision is a single-row counter bumped by every save of the device
// catalog.
type CatalogRevision struct {
	ID        uint `gorm:"primaryKey"`
	Revision  int64
	UpdatedAt time.Time
}

type Alert struct {
	ID        uint   `gorm:"primaryKey"`
	Kind      string `gorm:"type:varchar(20);index:idx_alert_device"`
	DeviceID  string `gorm:"index:idx_alert_device"`
	Timestamp time.Time
	Type      AlertType `gorm:"type:varchar(20);check:type IN ('battery')"`
	Message   string
	Battery   int
}
