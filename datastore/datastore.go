// Package datastore is a small JSON-file key-value store with periodic
// autosave. Writes are atomic (temp file + rename) and saves are skipped when
// the serialized data hasn't changed since the last save.
package datastore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Options configures a Store.
type Options struct {
	AutoSaveInterval time.Duration
	Logger           *log.Logger
}

// Store is an in-memory map persisted to a single JSON file.
type Store struct {
	mu   sync.RWMutex
	data map[string]any

	file   string
	logger *log.Logger

	// saveMu serializes save() and guards lastChecksum, since the autosave
	// goroutine and Save/Close run concurrently.
	saveMu       sync.Mutex
	lastChecksum string

	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeMu sync.Mutex
	closed  bool
}

// Open loads (or creates) the store at path with default options.
func Open(path string) (*Store, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions loads (or creates) the store at path.
func OpenWithOptions(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("datastore path cannot be empty")
	}
	if opts.AutoSaveInterval <= 0 {
		opts.AutoSaveInterval = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "[datastore] ", log.LstdFlags)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create datastore directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		data:   make(map[string]any),
		file:   path,
		logger: opts.Logger,
		cancel: cancel,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeFileAtomic([]byte("{}")); err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create datastore file: %w", err)
		}
	} else if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to stat datastore file: %w", err)
	} else if err := s.load(); err != nil {
		cancel()
		return nil, err
	}

	s.wg.Add(1)
	go s.autoSave(ctx, opts.AutoSaveInterval)
	return s, nil
}

// Get retrieves a value by key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores a value under key.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Keys returns all keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Save forces an immediate save to disk.
func (s *Store) Save() error {
	return s.save()
}

// Close stops the autosave routine and performs a final save.
func (s *Store) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	s.closeMu.Unlock()

	s.cancel()
	s.wg.Wait()
	return s.save()
}

func (s *Store) autoSave(ctx context.Context, interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.save(); err != nil {
				s.logger.Printf("auto-save error: %v", err)
			}
		}
	}
}

func (s *Store) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal datastore: %w", err)
	}

	sum := checksum(data)
	if sum == s.lastChecksum {
		return nil
	}
	if err := s.writeFileAtomic(data); err != nil {
		return err
	}
	s.lastChecksum = sum
	return nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.file)
	if err != nil {
		return fmt.Errorf("failed to read datastore file: %w", err)
	}
	var loaded map[string]any
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("invalid datastore JSON: %w", err)
	}
	s.data = loaded
	s.lastChecksum = checksum(data)
	return nil
}

func (s *Store) writeFileAtomic(data []byte) error {
	tmp := s.file + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	f, err := os.OpenFile(tmp, os.O_RDWR, 0644)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	f.Close()
	if err := os.Rename(tmp, s.file); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
