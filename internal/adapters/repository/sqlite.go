package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GoodFrogman7/coach-ai/internal/domain/types"
)

// SQLiteStore persists sessions and the outcome ledger in a single SQLite
// database. Nested payloads are stored as JSON text columns.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies pending
// schema migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

type migration struct {
	version int
	name    string
	up      func() error
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var version int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: s.migration001InitialSchema},
	}
	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if err := m.up(); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLiteStore) migration001InitialSchema() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			overall_score REAL NOT NULL,
			phase_weighted_score REAL NOT NULL,
			phase_scores TEXT NOT NULL,
			phase_metrics TEXT NOT NULL,
			recommendations TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS drill_outcomes (
			id TEXT PRIMARY KEY,
			prior_session_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create drill_outcomes table: %w", err)
	}
	if _, err := s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_drill_outcomes_session
		ON drill_outcomes(session_id)
	`); err != nil {
		return fmt.Errorf("create drill_outcomes index: %w", err)
	}
	return nil
}

// SaveSession persists one session record.
func (s *SQLiteStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.Summary.SessionID == "" {
		return ErrEmptySessionID
	}
	phaseScores, err := json.Marshal(rec.Summary.PhaseScores)
	if err != nil {
		return fmt.Errorf("encode phase scores: %w", err)
	}
	phaseMetrics, err := json.Marshal(rec.PhaseMetrics)
	if err != nil {
		return fmt.Errorf("encode phase metrics: %w", err)
	}
	recommendations, err := json.Marshal(rec.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions
			(session_id, overall_score, phase_weighted_score, phase_scores, phase_metrics, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Summary.SessionID, rec.Summary.OverallScore, rec.Summary.PhaseWeightedScore,
		string(phaseScores), string(phaseMetrics), string(recommendations),
		createdAt.Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session %q: %w", rec.Summary.SessionID, ErrDuplicateSession)
		}
		return fmt.Errorf("save session %q: %w", rec.Summary.SessionID, err)
	}
	return nil
}

// LatestBefore returns the most recent session preceding the given id.
func (s *SQLiteStore) LatestBefore(ctx context.Context, sessionID string) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, overall_score, phase_weighted_score, phase_scores, phase_metrics, recommendations, created_at
		FROM sessions
		WHERE session_id < ?
		ORDER BY session_id DESC
		LIMIT 1
	`, sessionID)

	var rec SessionRecord
	var phaseScores, phaseMetrics, recommendations, createdAt string
	err := row.Scan(&rec.Summary.SessionID, &rec.Summary.OverallScore, &rec.Summary.PhaseWeightedScore,
		&phaseScores, &phaseMetrics, &recommendations, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNoSessions
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session before %q: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(phaseScores), &rec.Summary.PhaseScores); err != nil {
		return SessionRecord{}, fmt.Errorf("decode phase scores: %w", err)
	}
	if err := json.Unmarshal([]byte(phaseMetrics), &rec.PhaseMetrics); err != nil {
		return SessionRecord{}, fmt.Errorf("decode phase metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendations), &rec.Recommendations); err != nil {
		return SessionRecord{}, fmt.Errorf("decode recommendations: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

// Sessions lists all persisted session ids in ascending order.
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT session_id FROM sessions ORDER BY session_id ASC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Append writes outcome records to the ledger inside one transaction.
func (s *SQLiteStore) Append(ctx context.Context, records []types.DrillOutcomeRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger append: %w", err)
	}
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode outcome %q: %w", rec.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO drill_outcomes (id, prior_session_id, session_id, payload, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, rec.ID, rec.PriorSessionID, rec.SessionID, string(payload),
			rec.Timestamp.Format(time.RFC3339Nano)); err != nil {
			tx.Rollback()
			return fmt.Errorf("append outcome %q: %w", rec.ID, err)
		}
	}
	return tx.Commit()
}

// All reads the full ledger in append order. Rows whose payload cannot be
// decoded make the whole ledger read as empty, matching the append-only
// contract that history is either trusted or ignored.
func (s *SQLiteStore) All(ctx context.Context) ([]types.DrillOutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM drill_outcomes ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	var out []types.DrillOutcomeRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		var rec types.DrillOutcomeRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return []types.DrillOutcomeRecord{}, nil
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures through the error
	// string; there is no portable sentinel across driver versions.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
