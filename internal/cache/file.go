package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/otcheredev/clinic-desk/pkg/logger"
)

// FileCache implements Cache with a single JSON document on disk. It is the
// default storage for the CLI, where every command is a fresh process.
// A document that no longer decodes is treated as empty and replaced by the
// next write.
type FileCache struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

type fileEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NewFileCache creates a file-backed cache at path, creating parent directories
func NewFileCache(path string) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileCache{path: path, log: logger.Component("cache")}, nil
}

// Get retrieves a value from cache
func (f *FileCache) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return nil, err
	}
	entry, ok := entries[key]
	if !ok || expired(entry.ExpiresAt, time.Now()) {
		return nil, ErrCacheMiss
	}
	return entry.Value, nil
}

// Set stores a value in cache
func (f *FileCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[key] = fileEntry{Value: value, ExpiresAt: expiry(ttl)}
	return f.write(entries)
}

// Delete removes a value from cache
func (f *FileCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.write(entries)
}

// Exists checks if a key exists
func (f *FileCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := f.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	return err == nil, err
}

// Clear removes all keys matching pattern
func (f *FileCache) Clear(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	for key := range entries {
		if matchPattern(key, pattern) {
			delete(entries, key)
		}
	}
	return f.write(entries)
}

// Close is a no-op; every operation opens and closes the file
func (f *FileCache) Close() error {
	return nil
}

func (f *FileCache) read() (map[string]fileEntry, error) {
	entries := make(map[string]fileEntry)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		f.log.Warn().Err(err).Str("path", f.path).Msg("Ignoring undecodable cache file")
		return make(map[string]fileEntry), nil
	}
	return entries, nil
}

// write replaces the file atomically so a crash never leaves half a document
func (f *FileCache) write(entries map[string]fileEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".cache-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set cache file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
