package storage

import (
	"context"
	"sync"
)

// Memory is an in-process KV. It is the default for tests and for the
// terminal reader when no file is configured.
type Memory struct {
	mu          sync.Mutex
	data        map[string]string
	quota       int64
	subscribers map[int64]chan string
	nextSubID   int64
}

var (
	_ KV       = (*Memory)(nil)
	_ Notifier = (*Memory)(nil)
)

// NewMemory creates an empty namespace limited to quota bytes (<= 0 means unlimited).
func NewMemory(quota int64) *Memory {
	return &Memory{
		data:        map[string]string{},
		quota:       quota,
		subscribers: map[int64]chan string{},
	}
}

// Get implements KV.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements KV.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	old, exists := m.data[key]
	if !fits(m.quota, m.usedLocked(), key, old, exists, value) {
		m.mu.Unlock()
		return ErrQuotaExceeded
	}
	m.data[key] = value
	m.broadcastLocked(key)
	m.mu.Unlock()
	return nil
}

// Remove implements KV.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		delete(m.data, key)
		m.broadcastLocked(key)
	}
	return nil
}

// Used returns the namespace usage in bytes.
func (m *Memory) Used() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedLocked()
}

// Subscribe implements Notifier.
func (m *Memory) Subscribe(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (m *Memory) usedLocked() int64 {
	var n int64
	for k, v := range m.data {
		n += usage(k, v)
	}
	return n
}

// broadcastLocked never blocks; a slow subscriber misses intermediate keys.
func (m *Memory) broadcastLocked(key string) {
	for _, ch := range m.subscribers {
		select {
		case ch <- key:
		default:
		}
	}
}
