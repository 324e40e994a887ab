package notify

import (
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/db"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/models"
)

//go:generate mockgen -source=alert.go -destination=mocks/mock_alert.go -package=mocks

type IAlert interface {
	GetDeviceAlerts(kind device.Kind, deviceID string) ([]models.Alert, error)
}

// AlertNotifier stores each notification as an alert row.
type AlertNotifier struct {
	Db db.DB
}

func NewAlertNotifier(d *db.DB) *AlertNotifier {
	return &AlertNotifier{Db: *d}
}

func (a *AlertNotifier) Notify(n device.Notification) {
	logger := common.GetCategoryLogger(common.LoggerNameNotify, common.LoggerCategoryAlert)

	timestamp := n.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	alert := models.Alert{
		Kind:      n.Kind.String(),
		DeviceID:  n.DeviceID,
		Timestamp: timestamp,
		Type:      models.AlertType(n.Category),
		Message:   n.Message,
		Battery:   n.BatteryPercentage,
	}

	logger.Info("Alert found", zap.Reflect("alert", alert))

	if err := a.Db.Conn.Create(&alert).Error; err != nil {
		logger.Error("Alert not saved", zap.Reflect("alert", alert), zap.Error(err))
		return
	}

	logger.Info("Alert saved", zap.Reflect("alert", alert))
}

// GetDeviceAlerts returns the device's alerts, newest first.
func (a *AlertNotifier) GetDeviceAlerts(kind device.Kind, deviceID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := a.Db.Conn.
		Where("kind = ? AND device_id = ?", kind.String(), deviceID).
		Order("timestamp desc").
		Order("id desc").
		Find(&alerts).Error
	return alerts, err
}
