package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(mode, status string, pages ...PageRecord) *Run {
	return &Run{
		Mode:       mode,
		StartedAt:  time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC),
		DurationMS: 42,
		Status:     status,
		Modules:    []string{"tenta", "tenta.types"},
		Pages:      pages,
	}
}

func TestSQLiteStore_SaveAndListRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	first := testRun("generate", "ok",
		PageRecord{Path: "docs/pages/index.mdx", SHA256: "aa", Size: 10},
		PageRecord{Path: "docs/pages/examples.mdx", SHA256: "bb", Size: 20},
	)
	id1, err := store.SaveRun(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, id1, first.ID)

	failed := testRun("check", "drift")
	failed.Error = "examples.mdx changed"
	_, err = store.SaveRun(ctx, failed)
	require.NoError(t, err)

	runs, err := store.LatestRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "check", runs[0].Mode)
	assert.Equal(t, "drift", runs[0].Status)
	assert.Equal(t, "examples.mdx changed", runs[0].Error)
	assert.Empty(t, runs[0].Pages)

	assert.Equal(t, "generate", runs[1].Mode)
	assert.Equal(t, []string{"tenta", "tenta.types"}, runs[1].Modules)
	assert.True(t, runs[1].StartedAt.Equal(first.StartedAt))
	require.Len(t, runs[1].Pages, 2)
	assert.Equal(t, "docs/pages/index.mdx", runs[1].Pages[0].Path)
	assert.Equal(t, int64(20), runs[1].Pages[1].Size)
}

func TestSQLiteStore_LastPagesSkipsFailedRuns(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	pages, err := store.LastPages(ctx)
	require.NoError(t, err)
	assert.Empty(t, pages)

	_, err = store.SaveRun(ctx, testRun("generate", "ok", PageRecord{Path: "a", SHA256: "1"}))
	require.NoError(t, err)
	_, err = store.SaveRun(ctx, testRun("generate", "error", PageRecord{Path: "a", SHA256: "2"}))
	require.NoError(t, err)

	pages, err = store.LastPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "1", pages[0].SHA256)
}

func TestSQLiteStore_LatestRunsLimit(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.SaveRun(ctx, testRun("generate", "ok"))
		require.NoError(t, err)
	}

	runs, err := store.LatestRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
	assert.Greater(t, runs[0].ID, runs[1].ID)
}
