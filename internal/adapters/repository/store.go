// Package repository defines the session store and outcome ledger
// interfaces and their in-memory and SQLite implementations.
package repository

import (
	"context"
	"time"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// SessionRecord persists one analyzed session: the summary a later
// session's progress tracker recovers, plus the practitioner phase
// metrics and issued recommendations the outcome builder needs next time.
type SessionRecord struct {
	Summary         types.SessionSummary    `json:"summary"`
	PhaseMetrics    []types.PhaseMetrics    `json:"phase_metrics"`
	Recommendations types.RecommendationSet `json:"recommendations"`
	CreatedAt       time.Time               `json:"created_at"`
}

// SessionStore provides read/write access to persisted sessions.
type SessionStore interface {
	// SaveSession persists one session record. Returns ErrDuplicateSession
	// when the session id was already saved.
	SaveSession(ctx context.Context, rec SessionRecord) error

	// LatestBefore returns the most recent session strictly preceding the
	// given session id. Returns ErrNoSessions when none exists.
	LatestBefore(ctx context.Context, sessionID string) (SessionRecord, error)

	// Sessions lists all persisted session ids in ascending order.
	Sessions(ctx context.Context) ([]string, error)
}

// OutcomeLedger is the append-only history of drill outcomes. Records are
// never mutated or deleted; a corrupt or partial ledger reads as empty.
type OutcomeLedger interface {
	Append(ctx context.Context, records []types.DrillOutcomeRecord) error
	All(ctx context.Context) ([]types.DrillOutcomeRecord, error)
}

// Store combines both persistence concerns behind one handle.
type Store interface {
	SessionStore
	OutcomeLedger

	Close() error
}
