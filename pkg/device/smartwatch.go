package device

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// Smartwatch is the battery-powered variant.
type Smartwatch struct {
	base
	battery            int
	lowBatteryNotified bool
	notifier           Notifier

	// pending holds notifications not yet delivered. They queue while
	// deferred is set, and a notification raised by the constructor always
	// waits for FlushNotifications so the owner can attach its notifier
	// first.
	pending  []Notification
	deferred bool
}

func NewSmartwatch(id string, name string, isOn bool, batteryPercentage int) (*Smartwatch, error) {
	w := &Smartwatch{deferred: true}

	b, err := newBase(id, name, isOn, w.canTurnOn)
	if err != nil {
		return nil, err
	}
	w.base = b

	if err := w.SetBatteryPercentage(batteryPercentage); err != nil {
		return nil, err
	}
	w.deferred = false
	return w, nil
}

func (w *Smartwatch) Kind() Kind {
	return KindSmartwatch
}

func (w *Smartwatch) BatteryPercentage() int {
	return w.battery
}

// SetBatteryPercentage stores a level in [0,100]. The first assignment below
// LowBatteryThreshold notifies; later ones stay quiet.
func (w *Smartwatch) SetBatteryPercentage(level int) error {
	if err := validateBattery(level); err != nil {
		return err
	}
	w.battery = level

	if level < LowBatteryThreshold && !w.lowBatteryNotified {
		w.lowBatteryNotified = true
		w.notify(Notification{
			Kind:              KindSmartwatch,
			DeviceID:          w.id,
			Category:          NotificationCategoryBattery,
			Message:           "Smartwatch's battery is low!",
			BatteryPercentage: level,
			Timestamp:         time.Now(),
		})
	}
	return nil
}

// LowBatteryNotified reports whether the low-battery latch has fired.
func (w *Smartwatch) LowBatteryNotified() bool {
	return w.lowBatteryNotified
}

// SetNotifier routes future notifications; nil restores the log notifier.
func (w *Smartwatch) SetNotifier(n Notifier) {
	w.notifier = n
}

func (w *Smartwatch) notify(n Notification) {
	w.pending = append(w.pending, n)
	if !w.deferred {
		w.flush()
	}
}

func (w *Smartwatch) flush() {
	target := w.notifier
	if target == nil {
		target = defaultNotifier
	}
	pending := w.pending
	w.pending = nil
	for _, n := range pending {
		target.Notify(n)
	}
}

func (w *Smartwatch) canTurnOn() error {
	if w.battery < MinBatteryToTurnOn {
		return fmt.Errorf("%w: %d%% is below the %d%% minimum", ErrEmptyBattery, w.battery, MinBatteryToTurnOn)
	}
	return nil
}

func (w *Smartwatch) TurnOn() error {
	if err := w.power.turnOn(); err != nil {
		return err
	}
	// canTurnOn guaranteed at least MinBatteryToTurnOn, so this cannot fail.
	return w.SetBatteryPercentage(w.battery - TurnOnBatteryCost)
}

func (w *Smartwatch) String() string {
	return w.prefix(KindSmartwatch) + "," + strconv.Itoa(w.battery) + "%"
}

func (w *Smartwatch) Clone() Device {
	c := &Smartwatch{
		battery:            w.battery,
		lowBatteryNotified: w.lowBatteryNotified,
		notifier:           w.notifier,
		pending:            slices.Clone(w.pending),
		deferred:           w.deferred,
	}
	c.base = w.cloneBase(c.canTurnOn)
	return c
}
