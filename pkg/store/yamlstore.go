package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

const yamlCatalogVersion = 1

type yamlCatalog struct {
	Version int             `yaml:"version"`
	Devices []device.Record `yaml:"devices"`
}

var yamlHeader = []byte(`# Device catalog
# Written by the device manager on every change. Edit while the service is
# stopped; records that fail validation are skipped on load.

`)

// YAMLStore keeps the catalog as a YAML document of device records.
type YAMLStore struct {
	mu   sync.Mutex
	path string
}

func NewYAMLStore(path string) *YAMLStore {
	return &YAMLStore{path: path}
}

func (s *YAMLStore) LoadAll(ctx context.Context) ([]device.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := common.GetCategoryLogger(common.LoggerNameStore, common.LoggerCategoryLoad, zap.String("path", s.path))

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("Device file not found, starting empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read device file: %w", err)
	}

	var catalog yamlCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse device file: %w", err)
	}
	if catalog.Version != 0 && catalog.Version != yamlCatalogVersion {
		return nil, fmt.Errorf("unsupported device file version: %d (expected %d)", catalog.Version, yamlCatalogVersion)
	}

	devices := make([]device.Device, 0, len(catalog.Devices))
	for i, r := range catalog.Devices {
		d, err := device.FromRecord(r)
		if err != nil {
			logger.Warn("Skipping invalid device record",
				zap.Int("index", i),
				zap.String("kind", r.Kind.String()),
				zap.String("id", r.ID),
				zap.Error(err))
			continue
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (s *YAMLStore) SaveAll(ctx context.Context, devices []device.Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog := yamlCatalog{
		Version: yamlCatalogVersion,
		Devices: common.Mapper(devices, device.ToRecord),
	}

	data, err := yaml.Marshal(&catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal devices: %w", err)
	}

	return writeFileAtomic(s.path, slices.Concat(yamlHeader, data))
}
