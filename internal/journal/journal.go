// Package journal records sync runs in a local SQLite database. The journal
// is operational bookkeeping only — Nightscout stays the single durable store
// for health data, and the engine never consults the journal.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded sync operation.
type Run struct {
	ID         string
	Operation  string
	Since      string
	Till       string
	Records    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Journal appends and lists sync runs.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite journal at dir/journal.db.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sync_runs (
		id          TEXT PRIMARY KEY,
		operation   TEXT NOT NULL,
		since       TEXT,
		till        TEXT,
		records     INTEGER NOT NULL DEFAULT 0,
		error       TEXT,
		started_at  TEXT NOT NULL,
		finished_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends a run. An empty ID is assigned a fresh UUID; the assigned ID
// is returned.
func (j *Journal) Record(run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := j.db.Exec(
		`INSERT INTO sync_runs (id, operation, since, till, records, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.Since, run.Till, run.Records, run.Error,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return run.ID, nil
}

// Runs returns the most recent runs, newest first.
func (j *Journal) Runs(limit int) ([]Run, error) {
	rows, err := j.db.Query(
		`SELECT id, operation, since, till, records, error, started_at, finished_at
		 FROM sync_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Operation, &r.Since, &r.Till, &r.Records, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
