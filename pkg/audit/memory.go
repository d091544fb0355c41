package audit

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory Storage for tests and ephemeral runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStorage creates an empty in-memory audit storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store persists one record.
func (m *MemoryStorage) Store(_ context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryStorage) Recent(_ context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStorage) Close() error {
	return nil
}

// Len reports how many records have been stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
