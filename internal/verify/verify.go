// Package verify checks that regenerating the documentation leaves the
// committed pages byte-identical.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsync/internal/generator"
	"docsync/internal/storage"
)

// ErrDrift is returned when at least one page changed on regeneration.
var ErrDrift = errors.New("documentation is out of date")

// Runner regenerates the pages.
type Runner interface {
	Run(ctx context.Context) (*generator.Result, error)
}

// PageCheck compares one page before and after regeneration.
type PageCheck struct {
	Before generator.PageDigest
	After  generator.PageDigest
	// Baseline is the page digest of the last successful recorded run, empty
	// when none is known.
	Baseline string
}

// Drifted reports whether the page was missing or its content changed.
func (c PageCheck) Drifted() bool {
	return !c.Before.Exists || c.Before.SHA256 != c.After.SHA256
}

// Report is the outcome of a check.
type Report struct {
	Pages []PageCheck
}

// Drifted lists the paths of pages that changed.
func (r *Report) Drifted() []string {
	var paths []string
	for _, p := range r.Pages {
		if p.Drifted() {
			paths = append(paths, p.After.Path)
		}
	}
	return paths
}

// SetBaseline attaches the digests of the last successful run to the pages
// they describe.
func (r *Report) SetBaseline(pages []storage.PageRecord) {
	byPath := make(map[string]string, len(pages))
	for _, p := range pages {
		byPath[p.Path] = p.SHA256
	}
	for i := range r.Pages {
		r.Pages[i].Baseline = byPath[r.Pages[i].After.Path]
	}
}

// Check digests outputs, regenerates them with runner and digests them again.
// The report is returned even when the pages drifted; the error then wraps
// ErrDrift.
func Check(ctx context.Context, outputs []string, runner Runner) (*Report, error) {
	before := make([]generator.PageDigest, len(outputs))
	for i, path := range outputs {
		d, err := generator.DigestFile(path)
		if err != nil {
			return nil, err
		}
		before[i] = d
	}

	if _, err := runner.Run(ctx); err != nil {
		return nil, fmt.Errorf("regeneration failed: %w", err)
	}

	report := &Report{Pages: make([]PageCheck, len(outputs))}
	for i, path := range outputs {
		after, err := generator.DigestFile(path)
		if err != nil {
			return nil, err
		}
		report.Pages[i] = PageCheck{Before: before[i], After: after}
	}

	if drifted := report.Drifted(); len(drifted) > 0 {
		return report, fmt.Errorf("%w: %s", ErrDrift, strings.Join(drifted, ", "))
	}
	return report, nil
}
