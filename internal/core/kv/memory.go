package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Memory is an in-process KV. It backs tests and runs where nothing should
// touch the disk.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

var _ KV = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	e, err := m.GetRaw(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (m *Memory) Set(ctx context.Context, key string, value any) error {
	return m.set(key, value, nil)
}

func (m *Memory) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	exp := m.now().Add(ttl)
	return m.set(key, value, &exp)
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.GetRaw(ctx, key)
	if IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *Memory) ListKeys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	keys := make([]string, 0, len(m.entries))
	for k, e := range m.entries {
		if !e.Expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) GetRaw(_ context.Context, key string) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return Entry{}, fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}
	if e.Expired(m.now()) {
		delete(m.entries, key)
		return Entry{}, fmt.Errorf("kv get %q: %w", key, ErrNotFound)
	}
	return e, nil
}

func (m *Memory) set(key string, value any, expiresAt *time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	created := now
	if prev, ok := m.entries[key]; ok {
		created = prev.CreatedAt
	}
	m.entries[key] = Entry{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: created,
		UpdatedAt: now,
	}
	return nil
}
