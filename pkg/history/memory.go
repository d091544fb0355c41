package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
// Decisions are lost on process exit.
type MemoryStore struct {
	mu        sync.RWMutex
	decisions []Decision
	closed    bool
}

// NewMemoryStore creates an empty in-memory decision store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// RecordDecision persists one decision.
func (m *MemoryStore) RecordDecision(_ context.Context, decision Decision) error {
	if decision.Outcome == "" {
		return fmt.Errorf("outcome cannot be empty")
	}
	if decision.DecidedAt.IsZero() {
		decision.DecidedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	m.decisions = append(m.decisions, decision)
	return nil
}

// ApprovalStats returns the approval counts since the given time.
func (m *MemoryStore) ApprovalStats(_ context.Context, toolID string, since time.Time) (approved, total int, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, 0, ErrClosed
	}

	for _, d := range m.decisions {
		if d.DecidedAt.Before(since) {
			continue
		}
		if toolID != "" && d.ToolID != toolID {
			continue
		}
		total++
		if d.Outcome == ApprovedOutcome {
			approved++
		}
	}
	return approved, total, nil
}

// Cleanup removes decisions older than the given time.
func (m *MemoryStore) Cleanup(_ context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}

	kept := m.decisions[:0]
	deleted := 0
	for _, d := range m.decisions {
		if d.DecidedAt.Before(olderThan) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	m.decisions = kept
	return deleted, nil
}

// Close marks the store closed. Further operations return ErrClosed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
