package storage

import (
	"context"
	"time"
)

// Run is one recorded generate or check invocation.
type Run struct {
	ID         int64
	Mode       string // generate | check
	StartedAt  time.Time
	DurationMS int64
	Status     string // ok | drift | error
	Error      string
	Modules    []string
	Pages      []PageRecord
}

// PageRecord is the digest of one page at the end of a run.
type PageRecord struct {
	Path   string
	SHA256 string
	Size   int64
}

// RunStore persists the history of generation runs.
type RunStore interface {
	// SaveRun stores a run with its pages and returns its ID.
	SaveRun(ctx context.Context, run *Run) (int64, error)

	// LatestRuns returns up to limit runs, newest first.
	LatestRuns(ctx context.Context, limit int) ([]Run, error)

	// LastPages returns the page records of the most recent successful run.
	LastPages(ctx context.Context) ([]PageRecord, error)

	Close() error
}
