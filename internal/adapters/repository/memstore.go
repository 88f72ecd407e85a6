package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// MemStore is an in-memory Store for tests and ephemeral runs. Safe for
// concurrent use.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
	outcomes []types.DrillOutcomeRecord
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]SessionRecord)}
}

// SaveSession stores the record, rejecting duplicates.
func (m *MemStore) SaveSession(_ context.Context, rec SessionRecord) error {
	if rec.Summary.SessionID == "" {
		return ErrEmptySessionID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[rec.Summary.SessionID]; ok {
		return fmt.Errorf("session %q: %w", rec.Summary.SessionID, ErrDuplicateSession)
	}
	m.sessions[rec.Summary.SessionID] = rec
	return nil
}

// LatestBefore scans for the greatest session id preceding the given one.
func (m *MemStore) LatestBefore(_ context.Context, sessionID string) (SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	best := ""
	for id := range m.sessions {
		if id < sessionID && id > best {
			best = id
		}
	}
	if best == "" {
		return SessionRecord{}, ErrNoSessions
	}
	return m.sessions[best], nil
}

// Sessions lists stored session ids in ascending order.
func (m *MemStore) Sessions(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Append adds outcome records to the ledger.
func (m *MemStore) Append(_ context.Context, records []types.DrillOutcomeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, records...)
	return nil
}

// All returns a copy of the full ledger in append order.
func (m *MemStore) All(_ context.Context) ([]types.DrillOutcomeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.DrillOutcomeRecord(nil), m.outcomes...), nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error { return nil }
