package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

const DefaultCapacity = 15

type Opts struct {
	// Capacity bounds the number of devices; DefaultCapacity when <= 0.
	Capacity int
	// Notifier is attached to every smartwatch admitted by Add or Load. Nil
	// keeps the devices' log notifier.
	Notifier device.Notifier
}

// Registry owns an ordered collection of devices and persists the whole
// collection through its store after every successful mutation. A mutation
// whose persistence fails leaves the registry unchanged.
type Registry struct {
	mu       sync.Mutex
	devices  []device.Device
	store    IStore
	notifier device.Notifier
	capacity int
}

func New(store IStore, opts Opts) *Registry {
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		store:    store,
		notifier: opts.Notifier,
		capacity: capacity,
	}
}

// Load replaces the collection with the store's content. Devices beyond
// capacity and repeated (kind, id) pairs are dropped.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	logger := common.GetCategoryLogger(common.LoggerNameRegistry, common.LoggerCategoryLoad)

	loaded, err := r.store.LoadAll(ctx)
	if err != nil {
		logger.Error("Loading devices failed", zap.Error(err))
		return fmt.Errorf("registry: load: %w", err)
	}

	kept := make([]device.Device, 0, min(len(loaded), r.capacity))
	for _, d := range loaded {
		if len(kept) >= r.capacity {
			logger.Warn("Dropping device over capacity",
				zap.String("kind", d.Kind().String()),
				zap.String("id", d.ID()),
				zap.Int("capacity", r.capacity))
			continue
		}
		if indexOf(kept, d.ID(), d.Kind()) >= 0 {
			logger.Warn("Dropping duplicate device",
				zap.String("kind", d.Kind().String()),
				zap.String("id", d.ID()))
			continue
		}
		// Alerts raised while rebuilding a persisted device were already sent
		// when the state was first committed.
		device.DiscardNotifications(d)
		r.attach(d)
		kept = append(kept, d)
	}

	r.devices = kept
	logger.Info("Devices loaded", zap.Int("count", len(kept)), zap.Int("read", len(loaded)))
	return nil
}

// Add admits a copy of d. A device handed in as on is switched off and turned
// on again so its power-on precondition and side effects apply.
func (r *Registry) Add(ctx context.Context, d device.Device) error {
	if d == nil {
		return errors.New("registry: nil device")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) >= r.capacity {
		return fmt.Errorf("%w: %d devices", ErrCapacityExceeded, r.capacity)
	}
	if indexOf(r.devices, d.ID(), d.Kind()) >= 0 {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, d.Kind(), d.ID())
	}

	admitted := d.Clone()
	device.DeferNotifications(admitted)
	r.attach(admitted)
	if admitted.IsOn() {
		device.ForceOff(admitted)
		if err := admitted.TurnOn(); err != nil {
			return err
		}
	}

	staged := append(slices.Clone(r.devices), admitted)
	if err := r.commit(ctx, staged, "Device added", admitted); err != nil {
		return err
	}
	device.FlushNotifications(admitted)
	return nil
}

func (r *Registry) Remove(ctx context.Context, id string, kind device.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := indexOf(r.devices, id, kind)
	if idx < 0 {
		return notFound(id, kind)
	}

	removed := r.devices[idx]
	staged := slices.Delete(slices.Clone(r.devices), idx, idx+1)
	return r.commit(ctx, staged, "Device removed", removed)
}

func (r *Registry) Rename(ctx context.Context, id string, kind device.Kind, name string) error {
	return r.update(ctx, "Device renamed", id, kind, func(d device.Device) error {
		return d.SetName(name)
	})
}

func (r *Registry) UpdateBattery(ctx context.Context, id string, level int) error {
	kind := device.KindSmartwatch
	return r.update(ctx, "Battery updated", id, kind, func(d device.Device) error {
		return d.(*device.Smartwatch).SetBatteryPercentage(level)
	})
}

func (r *Registry) UpdateOperatingSystem(ctx context.Context, id, os string) error {
	kind := device.KindPersonalComputer
	return r.update(ctx, "Operating system updated", id, kind, func(d device.Device) error {
		return d.(*device.PersonalComputer).SetOperatingSystem(os)
	})
}

func (r *Registry) UpdateIpAddress(ctx context.Context, id, ip string) error {
	kind := device.KindEmbeddedDevice
	return r.update(ctx, "IP address updated", id, kind, func(d device.Device) error {
		return d.(*device.EmbeddedDevice).SetIpAddress(ip)
	})
}

func (r *Registry) UpdateNetworkName(ctx context.Context, id, network string) error {
	kind := device.KindEmbeddedDevice
	return r.update(ctx, "Network name updated", id, kind, func(d device.Device) error {
		return d.(*device.EmbeddedDevice).SetNetworkName(network)
	})
}

func (r *Registry) TurnOn(ctx context.Context, id string, kind device.Kind) error {
	return r.update(ctx, "Device turned on", id, kind, func(d device.Device) error {
		return d.TurnOn()
	})
}

func (r *Registry) TurnOff(ctx context.Context, id string, kind device.Kind) error {
	return r.update(ctx, "Device turned off", id, kind, func(d device.Device) error {
		return d.TurnOff()
	})
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

func (r *Registry) Capacity() int {
	return r.capacity
}

// GetAll returns copies of every device in insertion order.
func (r *Registry) GetAll() []device.Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return common.Mapper(r.devices, func(d device.Device) device.Device { return d.Clone() })
}

// GetByID returns a copy of the first device, in insertion order, whose id
// matches regardless of kind.
func (r *Registry) GetByID(id string) (device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.devices {
		if d.ID() == id {
			return d.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

func (r *Registry) Get(id string, kind device.Kind) (device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := indexOf(r.devices, id, kind)
	if idx < 0 {
		return nil, notFound(id, kind)
	}
	return r.devices[idx].Clone(), nil
}

// update applies fn to a clone of the matching device and commits the clone.
// Notifications raised by fn are delivered only once the commit succeeds.
// Errors from fn are returned unchanged.
func (r *Registry) update(ctx context.Context, msg string, id string, kind device.Kind, fn func(device.Device) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := indexOf(r.devices, id, kind)
	if idx < 0 {
		return notFound(id, kind)
	}

	target := r.devices[idx].Clone()
	device.DeferNotifications(target)
	if err := fn(target); err != nil {
		return err
	}

	staged := slices.Clone(r.devices)
	staged[idx] = target
	if err := r.commit(ctx, staged, msg, target); err != nil {
		return err
	}
	device.FlushNotifications(target)
	return nil
}

// commit persists staged and, only when that succeeds, makes it the live
// collection. Callers hold r.mu.
func (r *Registry) commit(ctx context.Context, staged []device.Device, msg string, subject device.Device) error {
	if err := r.store.SaveAll(ctx, staged); err != nil {
		common.GetCategoryLogger(common.LoggerNameRegistry, common.LoggerCategoryPersist).
			Error("Persisting devices failed, change discarded",
				zap.String("change", msg),
				zap.String("kind", subject.Kind().String()),
				zap.String("id", subject.ID()),
				zap.Error(err))
		return fmt.Errorf("registry: persist %s %q: %w", subject.Kind(), subject.ID(), err)
	}

	r.devices = staged
	common.GetCategoryLogger(common.LoggerNameRegistry, common.LoggerCategoryMutation).Info(msg,
		zap.String("kind", subject.Kind().String()),
		zap.String("id", subject.ID()),
		zap.String("device", subject.String()),
		zap.Int("count", len(staged)))
	return nil
}

func (r *Registry) attach(d device.Device) {
	if r.notifier == nil {
		return
	}
	if sw, ok := d.(*device.Smartwatch); ok {
		sw.SetNotifier(r.notifier)
	}
}

func matchKind(id string, kind device.Kind) func(device.Device) bool {
	return func(d device.Device) bool {
		return d.Kind() == kind && d.ID() == id
	}
}

func indexOf(devices []device.Device, id string, kind device.Kind) int {
	return slices.IndexFunc(devices, matchKind(id, kind))
}

func notFound(id string, kind device.Kind) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
