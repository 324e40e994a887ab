package registry

import (
	"context"

	"liyu1981.xyz/device-manager-service/pkg/device"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// IStore is the persistence gateway. SaveAll receives the complete, ordered
// collection after every mutation and must replace whatever it held before.
type IStore interface {
	LoadAll(ctx context.Context) ([]device.Device, error)
	SaveAll(ctx context.Context, devices []device.Device) error
}
