package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ RunStore = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			started_at TEXT NOT NULL,
			duration_ms INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			modules JSON
		);`,
		`CREATE TABLE IF NOT EXISTS pages (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			sha256 TEXT,
			size INTEGER,
			PRIMARY KEY (run_id, path)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores the run and its pages in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	modules, err := json.Marshal(run.Modules)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (mode, started_at, duration_ms, status, error, modules)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.Mode, run.StartedAt.UTC().Format(time.RFC3339Nano), run.DurationMS, run.Status, run.Error, string(modules))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pages (run_id, path, sha256, size) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, p := range run.Pages {
		if _, err := stmt.ExecContext(ctx, id, p.Path, p.SHA256, p.Size); err != nil {
			return 0, fmt.Errorf("failed to insert page %s: %w", p.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// LatestRuns returns up to limit runs, newest first, with their pages.
func (s *SQLiteStore) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, started_at, duration_ms, status, COALESCE(error, ''), COALESCE(modules, '[]')
		FROM runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt, modules string
		if err := rows.Scan(&r.ID, &r.Mode, &startedAt, &r.DurationMS, &r.Status, &r.Error, &modules); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			r.StartedAt = t
		}
		if err := json.Unmarshal([]byte(modules), &r.Modules); err != nil {
			return nil, fmt.Errorf("run %d: bad modules column: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		pages, err := s.pagesOf(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Pages = pages
	}
	return runs, nil
}

// LastPages returns the pages of the newest run with status ok.
func (s *SQLiteStore) LastPages(ctx context.Context) ([]PageRecord, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE status = 'ok' ORDER BY id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.pagesOf(ctx, id)
}

func (s *SQLiteStore) pagesOf(ctx context.Context, runID int64) ([]PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, COALESCE(sha256, ''), COALESCE(size, 0) FROM pages WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var p PageRecord
		if err := rows.Scan(&p.Path, &p.SHA256, &p.Size); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}
