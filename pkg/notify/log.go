package notify

import (
	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

// LogNotifier writes every notification as a warning.
type LogNotifier struct{}

func (LogNotifier) Notify(n device.Notification) {
	common.GetCategoryLogger(common.LoggerNameNotify, common.LoggerCategoryAlert).
		Warn(n.Message,
			zap.String("kind", n.Kind.String()),
			zap.String("id", n.DeviceID),
			zap.String("type", n.Category),
			zap.Int("battery", n.BatteryPercentage),
			zap.Time("timestamp", n.Timestamp))
}
