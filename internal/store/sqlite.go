package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	preset TEXT NOT NULL,
	root TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	analyzed INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	workers INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS run_videos (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	video TEXT NOT NULL,
	sampled_frames INTEGER NOT NULL DEFAULT 0,
	error_count INTEGER NOT NULL DEFAULT 0,
	merged INTEGER NOT NULL DEFAULT 0,
	error TEXT DEFAULT '',
	PRIMARY KEY (run_id, video)
);

CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL,
	applied_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// NewSQLiteStore opens the run-history database, creating file and schema
// if needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			db.Close()
			return nil, fmt.Errorf("insert schema version: %w", err)
		}
	} else if err != nil {
		db.Close()
		return nil, fmt.Errorf("check schema version: %w", err)
	} else if version > schemaVersion {
		db.Close()
		return nil, fmt.Errorf("database schema version %d is newer than supported %d", version, schemaVersion)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// SaveRun records a completed run and its per-video outcomes in one
// transaction.
func (s *SQLiteStore) SaveRun(run *Run, videos []VideoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, preset, root, started_at, finished_at, elapsed_ms, total, analyzed, failed, workers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Preset, run.Root,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Elapsed.Milliseconds(),
		run.Total, run.Analyzed, run.Failed, run.Workers)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_videos (run_id, video, sampled_frames, error_count, merged, error)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare video insert: %w", err)
	}
	defer stmt.Close()
	for _, v := range videos {
		merged := 0
		if v.Merged {
			merged = 1
		}
		if _, err := stmt.Exec(run.ID, v.Video, v.SampledFrames, v.ErrorCount, merged, v.Error); err != nil {
			return fmt.Errorf("insert run video: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, preset, root, started_at, finished_at, elapsed_ms, total, analyzed, failed, workers
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var started, finished string
		var elapsedMS int64
		if err := rows.Scan(&r.ID, &r.Preset, &r.Root, &started, &finished,
			&elapsedMS, &r.Total, &r.Analyzed, &r.Failed, &r.Workers); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// GetRunVideos returns the per-video outcomes of one run, sorted by path.
func (s *SQLiteStore) GetRunVideos(runID string) ([]VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT run_id, video, sampled_frames, error_count, merged, error
		FROM run_videos WHERE run_id = ? ORDER BY video`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoRecord
	for rows.Next() {
		var v VideoRecord
		var merged int
		if err := rows.Scan(&v.RunID, &v.Video, &v.SampledFrames, &v.ErrorCount, &merged, &v.Error); err != nil {
			return nil, fmt.Errorf("scan run video: %w", err)
		}
		v.Merged = merged != 0
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
