package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
)

// TextFileStore keeps one device per line in the canonical line format.
type TextFileStore struct {
	mu   sync.Mutex
	path string
}

func NewTextFileStore(path string) *TextFileStore {
	return &TextFileStore{path: path}
}

func (s *TextFileStore) Path() string {
	return s.path
}

// LoadAll reads the file. A missing file is an empty catalog; malformed lines
// are skipped.
func (s *TextFileStore) LoadAll(ctx context.Context) ([]device.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		common.GetCategoryLogger(common.LoggerNameStore, common.LoggerCategoryLoad).
			Info("Device file not found, starting empty", zap.String("path", s.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open device file: %w", err)
	}
	defer f.Close()

	devices, err := device.ParseAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read device file: %w", err)
	}
	return devices, nil
}

// SaveAll rewrites the whole file through a temporary file and a rename, so
// readers never observe a partial catalog.
func (s *TextFileStore) SaveAll(ctx context.Context, devices []device.Device) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := device.WriteAll(&buf, devices); err != nil {
		return err
	}
	return writeFileAtomic(s.path, buf.Bytes())
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
