package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File keeps the whole namespace in one JSON object on disk. Every read goes
// to disk so edits made by another process are picked up; writes replace the
// file atomically through a temp file and rename.
type File struct {
	path  string
	quota int64
	mu    sync.Mutex
}

var _ KV = (*File)(nil)

// NewFile opens (or lazily creates) the namespace stored at path.
func NewFile(path string, quota int64) (*File, error) {
	if path == "" {
		return nil, errors.New("storage file path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &File{path: path, quota: quota}, nil
}

// Get implements KV.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set implements KV.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readLocked()
	if err != nil {
		return err
	}
	var used int64
	for k, v := range data {
		used += usage(k, v)
	}
	old, exists := data[key]
	if !fits(f.quota, used, key, old, exists, value) {
		return ErrQuotaExceeded
	}
	data[key] = value
	return f.writeLocked(data)
}

// Remove implements KV.
func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.readLocked()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.writeLocked(data)
}

func (f *File) readLocked() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	data := map[string]string{}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to decode storage file: %w", err)
	}
	return data, nil
}

func (f *File) writeLocked(data map[string]string) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
