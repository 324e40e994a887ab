package store

import (
	"context"
	"sync"

	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

// MemoryStore keeps copies of the last saved collection. Nothing survives the
// process.
type MemoryStore struct {
	mu      sync.Mutex
	devices []device.Device
	saves   int
}

func NewMemoryStore(seed ...device.Device) *MemoryStore {
	return &MemoryStore{devices: cloneAll(seed)}
}

func (s *MemoryStore) LoadAll(ctx context.Context) ([]device.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.devices), nil
}

func (s *MemoryStore) SaveAll(ctx context.Context, devices []device.Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = cloneAll(devices)
	s.saves++
	return nil
}

// Saves counts successful SaveAll calls.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func cloneAll(devices []device.Device) []device.Device {
	return common.Mapper(devices, func(d device.Device) device.Device { return d.Clone() })
}
