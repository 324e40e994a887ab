package notify

import "liyu1981.xyz/device-manager-service/pkg/device"

// Multi fans a notification out to each notifier in order.
type Multi []device.Notifier

func (m Multi) Notify(n device.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}
