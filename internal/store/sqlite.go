// Package store persists pipeline runs and stage events in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/pkg/events"
)

// timeLayout is fixed width so that timestamps stored as TEXT sort
// chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// RunSummary is one row of the run history.
type RunSummary struct {
	RunID          string                 `json:"run_id"`
	CreatedAt      time.Time              `json:"created_at"`
	Prompt         string                 `json:"prompt,omitempty"`
	Options        domain.PipelineOptions `json:"options"`
	Total          int                    `json:"total"`
	FinalPassed    int                    `json:"final_passed"`
	AcceptanceRate float64                `json:"acceptance_rate"`
}

// SQLiteStore keeps run history and the event log in one database.
// It implements events.EventSink.
type SQLiteStore struct {
	mu  sync.Mutex
	db  *sql.DB
	seq int64
	now func() time.Time
}

var _ events.EventSink = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path. Use MemoryPath for
// a throwaway database.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create store directory: %w", err)
			}
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps a :memory: database alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&s.seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read event sequence: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores the report of a finished run, replacing an earlier row
// with the same run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, req domain.PipelineRequest, rep *domain.PipelineReport) error {
	if rep == nil || rep.RunID == "" {
		return fmt.Errorf("report with a run id is required")
	}
	opts, err := json.Marshal(req.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		    (run_id, created_at, prompt, options, total, final_passed, acceptance_rate, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.RunID,
		s.now().UTC().Format(timeLayout),
		req.Prompt,
		string(opts),
		rep.TotalGenerated,
		rep.FinalPassed,
		rep.FinalAcceptanceRate,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rep.RunID, err)
	}
	return nil
}

// GetRun loads the full report of a run.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.PipelineReport, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	var rep domain.PipelineReport
	if err := json.Unmarshal([]byte(body), &rep); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", runID, err)
	}
	return &rep, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, prompt, options, total, final_passed, acceptance_rate
		FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			created string
			prompt  sql.NullString
			opts    string
		)
		if err := rows.Scan(&r.RunID, &created, &prompt, &opts, &r.Total, &r.FinalPassed, &r.AcceptanceRate); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("failed to parse created_at of %s: %w", r.RunID, err)
		}
		if err := json.Unmarshal([]byte(opts), &r.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of %s: %w", r.RunID, err)
		}
		r.Prompt = prompt.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Append implements events.EventSink. A repeated idempotency key is ignored.
func (s *SQLiteStore) Append(ctx context.Context, env events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO events
		    (id, idempotency_key, type, source, version, workflow_id, run_id, timestamp, payload, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		env.ID,
		env.IdempotencyKey,
		env.Type,
		env.Source,
		env.Version,
		env.WorkflowID,
		env.RunID,
		env.Timestamp.UTC().Format(timeLayout),
		string(env.Payload),
		s.seq+1,
	)
	if err != nil {
		return fmt.Errorf("failed to append %s event: %w", env.Type, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.seq++
	}
	return nil
}

// Events returns the events of a run in append order.
func (s *SQLiteStore) Events(ctx context.Context, runID string) ([]events.Envelope, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, idempotency_key, type, source, version, workflow_id, run_id, timestamp, payload
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []events.Envelope
	for rows.Next() {
		var (
			env     events.Envelope
			ts      string
			payload string
		)
		if err := rows.Scan(&env.ID, &env.IdempotencyKey, &env.Type, &env.Source, &env.Version,
			&env.WorkflowID, &env.RunID, &ts, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if env.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp: %w", err)
		}
		env.Payload = json.RawMessage(payload)
		out = append(out, env)
	}
	return out, rows.Err()
}
