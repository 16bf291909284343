package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"castella/internal/logging"
)

// File persists items as a single JSON object on disk. Writes go through a temp file and a
// rename so a crash never leaves a half-written session behind.
type File struct {
	path string
	log  *zap.Logger
	mu   sync.Mutex
}

func NewFile(path string, log *zap.Logger) *File {
	return &File{path: path, log: logging.OrNop(log)}
}

// Path returns the backing file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := items[key]
	return value, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	items[key] = value
	return f.save(items)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return f.save(items)
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	items := make(map[string]string)
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		// An unreadable file holds nothing we can trust; the next write replaces it.
		f.log.Warn("ignoring unreadable storage file", zap.String("path", f.path), zap.Error(err))
		return make(map[string]string), nil
	}
	return items, nil
}

func (f *File) save(items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*")
	if err != nil {
		return fmt.Errorf("create temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close storage file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
