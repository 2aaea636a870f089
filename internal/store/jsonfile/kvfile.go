// Package jsonfile keeps state in plain JSON files: a file-backed key/value
// store and a watcher for snapshot files dropped into a directory.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/orderbell/internal/core/kv"
)

// ErrCorrupt is returned by reads when the backing file cannot be decoded.
// Writes move such a file aside and start over.
var ErrCorrupt = errors.New("corrupt kv file")

type fileEntry struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// kvFile is the root JSON structure stored on disk.
type kvFile struct {
	Entries map[string]fileEntry `json:"entries"`
}

// KVStore implements kv.KV on top of a single JSON document. Every write
// rewrites the whole file atomically.
type KVStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a file-backed KV store at path. The file is created on
// the first write.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path, now: time.Now}
}

// Path returns the backing file.
func (s *KVStore) Path() string {
	return s.path
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	e, err := s.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (s *KVStore) Set(_ context.Context, key string, value any) error {
	return s.set(key, value, nil)
}

func (s *KVStore) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	exp := s.now().Add(ttl)
	return s.set(key, value, &exp)
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := file.Entries[key]; !ok {
		return nil
	}
	delete(file.Entries, key)
	return s.save(file)
}

func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.GetRaw(ctx, key)
	if kv.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *KVStore) ListKeys(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	keys := make([]string, 0, len(file.Entries))
	for k, e := range file.Entries {
		if e.ExpiresAt == nil || !e.ExpiresAt.Before(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *KVStore) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return kv.Entry{}, err
	}

	e, ok := file.Entries[key]
	if !ok {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}

	entry := kv.Entry{
		Key:       key,
		Value:     e.Value,
		ExpiresAt: e.ExpiresAt,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if entry.Expired(s.now()) {
		return kv.Entry{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return entry, nil
}

// SweepExpired drops expired entries from the file and returns how many
// were removed.
func (s *KVStore) SweepExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return 0, err
	}

	now := s.now()
	var n int64
	for k, e := range file.Entries {
		if e.ExpiresAt != nil && e.ExpiresAt.Before(now) {
			delete(file.Entries, k)
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.save(file)
}

func (s *KVStore) set(key string, value any, expiresAt *time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.loadForWrite()
	if err != nil {
		return err
	}

	now := s.now()
	created := now
	if prev, ok := file.Entries[key]; ok {
		created = prev.CreatedAt
	}
	file.Entries[key] = fileEntry{
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: created,
		UpdatedAt: now,
	}

	if err := s.save(file); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// load reads the file from disk.
// Returns an empty kvFile if the file doesn't exist.
func (s *KVStore) load() (kvFile, error) {
	file := kvFile{Entries: map[string]fileEntry{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return file, fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(data) == 0 {
		return file, nil
	}

	if err := json.Unmarshal(data, &file); err != nil {
		return kvFile{Entries: map[string]fileEntry{}}, fmt.Errorf("decode %s: %w: %w", s.path, ErrCorrupt, err)
	}
	if file.Entries == nil {
		file.Entries = map[string]fileEntry{}
	}

	return file, nil
}

// loadForWrite is load for callers about to rewrite the file. An
// undecodable file is renamed to <path>.corrupt.<timestamp> and an empty
// document is returned in its place.
func (s *KVStore) loadForWrite() (kvFile, error) {
	file, err := s.load()
	if !errors.Is(err, ErrCorrupt) {
		return file, err
	}

	backup := fmt.Sprintf("%s.corrupt.%s", s.path, s.now().Format("20060102-150405"))
	if rerr := os.Rename(s.path, backup); rerr != nil && !os.IsNotExist(rerr) {
		return file, fmt.Errorf("move corrupt %s aside: %w", s.path, rerr)
	}
	return file, nil
}

// save writes the file to disk atomically.
func (s *KVStore) save(file kvFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
