package device

import (
	"slices"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
)

const NotificationCategoryBattery = "battery"

// Notification is raised by a device when it crosses a threshold worth
// telling someone about. Only the latched low-battery alert exists today.
type Notification struct {
	Kind              Kind      `json:"kind"`
	DeviceID          string    `json:"device_id"`
	Category          string    `json:"category"`
	Message           string    `json:"message"`
	BatteryPercentage int       `json:"battery_percentage"`
	Timestamp         time.Time `json:"timestamp"`
}

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks

// Notifier receives device notifications. Implementations must not block for
// long: Notify runs inside the setter that triggered it.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// logNotifier is used until the owner of a device attaches its own notifier.
type logNotifier struct{}

func (logNotifier) Notify(n Notification) {
	common.GetCategoryLogger(common.LoggerNameDevice, common.LoggerCategoryBattery).
		Warn(n.Message, zap.Reflect("notification", n))
}

var defaultNotifier Notifier = logNotifier{}

// DeferNotifications queues the device's notifications until
// FlushNotifications or DiscardNotifications. The registry defers on a staged
// copy so nothing is sent for a change that is never committed.
func DeferNotifications(d Device) {
	if w, ok := d.(*Smartwatch); ok {
		w.deferred = true
	}
}

// FlushNotifications delivers queued notifications to the device's notifier
// and stops deferring.
func FlushNotifications(d Device) {
	if w, ok := d.(*Smartwatch); ok {
		w.deferred = false
		w.flush()
	}
}

// DiscardNotifications drops queued notifications and stops deferring. The
// latch is kept.
func DiscardNotifications(d Device) {
	if w, ok := d.(*Smartwatch); ok {
		w.deferred = false
		w.pending = nil
	}
}

// PendingNotifications returns the queued notifications.
func PendingNotifications(d Device) []Notification {
	if w, ok := d.(*Smartwatch); ok {
		return slices.Clone(w.pending)
	}
	return nil
}
