package kv

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryValue struct {
	data    []byte
	expires time.Time
}

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memoryValue
	now  func() time.Time
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]memoryValue),
		now:  time.Now,
	}
}

func (m *Memory) live(v memoryValue) bool {
	return v.expires.IsZero() || m.now().Before(v.expires)
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	v, ok := m.data[key.String()]
	m.mu.RUnlock()
	if !ok || !m.live(v) {
		return nil, ErrNotFound
	}
	return bytes.Clone(v.data), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	if err := key.validate(); err != nil {
		return err
	}
	v := memoryValue{data: bytes.Clone(value)}
	if ttl > 0 {
		v.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key.String()] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.data, key.String())
	m.mu.Unlock()
	return nil
}

// matching returns the live keys below prefix, sorted.
func (m *Memory) matching(prefix Key) []string {
	p := string(prefix.prefix())
	var keys []string
	for k, v := range m.data {
		if strings.HasPrefix(k, p) && m.live(v) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	m.mu.RLock()
	keys := m.matching(prefix)
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Key: decodeKey([]byte(k)), Value: bytes.Clone(m.data[k].data)}
	}
	m.mu.RUnlock()

	return func(yield func(Entry, error) bool) {
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

func (m *Memory) DeletePrefix(_ context.Context, prefix Key) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.matching(prefix)
	for _, k := range keys {
		delete(m.data, k)
	}
	return len(keys), nil
}

func (m *Memory) Close() error {
	return nil
}
