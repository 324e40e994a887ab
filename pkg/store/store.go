package store

import (
	"errors"

	"liyu1981.xyz/device-manager-service/pkg/registry"
)

// ErrStaleRevision is returned by SQLStore.SaveAll when another writer saved
// the catalog after this store last read or wrote it.
var ErrStaleRevision = errors.New("store: stale catalog revision")

var (
	_ registry.IStore = (*TextFileStore)(nil)
	_ registry.IStore = (*YAMLStore)(nil)
	_ registry.IStore = (*SQLStore)(nil)
	_ registry.IStore = (*MemoryStore)(nil)
)
