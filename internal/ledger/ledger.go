// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists run history in a SQLite database under the output
// directory. Each run records the document, provider, and per-page outcomes
// so earlier runs can be listed and compared.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lectern/pkg/types"
)

const dbFile = "runs.db"

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the run ledger at dir/runs.db, creating the schema
// if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			document_path TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			dpi INTEGER NOT NULL,
			pages_total INTEGER NOT NULL,
			done INTEGER NOT NULL,
			cache_hits INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_pages (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			page INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, page)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_content_hash ON runs(content_hash)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Run is one recorded pipeline run.
type Run struct {
	ID           int64
	StartedAt    time.Time
	DocumentPath string
	ContentHash  string
	Provider     types.Provider
	Model        string
	DPI          int
	PagesTotal   int
	Done         int
	CacheHits    int
	Failed       int
}

// Record persists one completed run with its per-page outcomes and returns
// the run ID.
func (s *Store) Record(ctx context.Context, startedAt time.Time, job types.Job, results []types.ExplanationResult) (int64, error) {
	var done, cacheHits, failed int
	for _, r := range results {
		switch r.Status {
		case types.PageDone:
			done++
		case types.PageCacheHit:
			cacheHits++
		case types.PageFailed:
			failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, document_path, content_hash, provider, model, dpi, pages_total, done, cache_hits, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339Nano), job.Document.Path, job.Document.ContentHash,
		string(job.Provider), job.Model, job.DPI, len(results), done, cacheHits, failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_pages (run_id, page, status, error) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing page insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, r.Page, string(r.Status), r.Err); err != nil {
			return 0, fmt.Errorf("inserting page %d: %w", r.Page, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// List returns up to limit runs, newest first. A limit of 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, document_path, content_hash, provider, model, dpi, pages_total, done, cache_hits, failed
		 FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, provider string
		if err := rows.Scan(&r.ID, &started, &r.DocumentPath, &r.ContentHash,
			&provider, &r.Model, &r.DPI, &r.PagesTotal, &r.Done, &r.CacheHits, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Provider = types.Provider(provider)
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// FailedPages returns the pages of a run that ended in the failed state.
func (s *Store) FailedPages(ctx context.Context, runID int64) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page FROM run_pages WHERE run_id = ? AND status = ? ORDER BY page`,
		runID, string(types.PageFailed))
	if err != nil {
		return nil, fmt.Errorf("querying failed pages: %w", err)
	}
	defer rows.Close()

	var pages []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
