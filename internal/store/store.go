// Package store persists benchmark run history to SQLite so runs are
// comparable over time and a leaderboard can be derived. The store is
// optional: the pipeline's source of truth is the per-run JSON result file.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/dealbench/internal/model"
)

// RunRecord is one persisted benchmark run.
type RunRecord struct {
	RunID          string    `json:"runId"`
	AgentID        string    `json:"agentId"`
	Mode           string    `json:"mode"`
	RunTimestamp   time.Time `json:"runTimestamp"`
	AggregateScore int       `json:"aggregateScore"`
	MaxScore       int       `json:"maxPossibleScore"`
	Band           string    `json:"band"`
}

// LeaderboardEntry is the best recorded run per agent.
type LeaderboardEntry struct {
	AgentID        string `json:"agentId"`
	AggregateScore int    `json:"aggregateScore"`
	MaxScore       int    `json:"maxPossibleScore"`
	Runs           int    `json:"runs"`
}

// Store provides access to the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at the given path and initializes the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// WAL keeps history reads cheap while a run is appending.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id          TEXT PRIMARY KEY,
		agent_id        TEXT NOT NULL,
		mode            TEXT NOT NULL,
		run_at          TEXT NOT NULL,
		aggregate_score INTEGER NOT NULL,
		max_score       INTEGER NOT NULL,
		band            TEXT NOT NULL,
		result_json     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_agent ON runs(agent_id, run_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun appends a run's result, keeping the full JSON alongside the
// queryable columns.
func (s *Store) SaveRun(ctx context.Context, result *model.ArtifactBenchmarkResult, band string) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, agent_id, mode, run_at, aggregate_score, max_score, band, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.AgentID,
		result.Mode,
		result.RunTimestamp.UTC().Format(time.RFC3339),
		result.AggregateScore,
		result.MaxPossibleScore,
		band,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, agent_id, mode, run_at, aggregate_score, max_score, band
		FROM runs ORDER BY run_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var runAt string
		if err := rows.Scan(&r.RunID, &r.AgentID, &r.Mode, &runAt, &r.AggregateScore, &r.MaxScore, &r.Band); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, runAt); err == nil {
			r.RunTimestamp = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Leaderboard returns each agent's best run by percentage, highest first.
func (s *Store) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id,
		       MAX(CASE WHEN max_score > 0 THEN aggregate_score * 100 / max_score ELSE 0 END) AS pct,
		       COUNT(*) AS runs
		FROM runs GROUP BY agent_id ORDER BY pct DESC`)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var pct int
		if err := rows.Scan(&e.AgentID, &pct, &e.Runs); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		// Recover the best run's raw scores for display.
		err := s.db.QueryRowContext(ctx, `
			SELECT aggregate_score, max_score FROM runs
			WHERE agent_id = ? AND (CASE WHEN max_score > 0 THEN aggregate_score * 100 / max_score ELSE 0 END) = ?
			ORDER BY run_at DESC LIMIT 1`, e.AgentID, pct).Scan(&e.AggregateScore, &e.MaxScore)
		if err != nil {
			return nil, fmt.Errorf("best run for %s: %w", e.AgentID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
