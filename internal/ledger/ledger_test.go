// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/lectern/pkg/types"
)

func testJob() types.Job {
	return types.Job{
		Document: types.Document{Path: "/tmp/deck.pdf", ContentHash: "abc123", PageCount: 5},
		Pages:    []int{1, 2, 3},
		Provider: types.ProviderClaude,
		Model:    "claude-3-5-sonnet-20241022",
		DPI:      200,
	}
}

func TestRecordAndList(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	results := []types.ExplanationResult{
		{Page: 1, Status: types.PageDone},
		{Page: 2, Status: types.PageCacheHit},
		{Page: 3, Status: types.PageFailed, Err: "timeout"},
	}

	runID, err := store.Record(ctx, started, testJob(), results)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if runID == 0 {
		t.Error("run ID should be non-zero")
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	r := runs[0]
	if r.ContentHash != "abc123" {
		t.Errorf("content hash = %q, want abc123", r.ContentHash)
	}
	if r.Provider != types.ProviderClaude {
		t.Errorf("provider = %q, want claude", r.Provider)
	}
	if r.PagesTotal != 3 || r.Done != 1 || r.CacheHits != 1 || r.Failed != 1 {
		t.Errorf("counts = total %d done %d hits %d failed %d, want 3/1/1/1",
			r.PagesTotal, r.Done, r.CacheHits, r.Failed)
	}
	if !r.StartedAt.Equal(started) {
		t.Errorf("started at = %v, want %v", r.StartedAt, started)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := store.Record(ctx, time.Now(), testJob(), []types.ExplanationResult{
			{Page: 1, Status: types.PageDone},
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest first: %d then %d", runs[0].ID, runs[1].ID)
	}
}

func TestFailedPages(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	results := []types.ExplanationResult{
		{Page: 1, Status: types.PageDone},
		{Page: 4, Status: types.PageFailed, Err: "bad gateway"},
		{Page: 2, Status: types.PageFailed, Err: "timeout"},
	}
	runID, err := store.Record(ctx, time.Now(), testJob(), results)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	pages, err := store.FailedPages(ctx, runID)
	if err != nil {
		t.Fatalf("FailedPages: %v", err)
	}
	if len(pages) != 2 || pages[0] != 2 || pages[1] != 4 {
		t.Errorf("failed pages = %v, want [2 4]", pages)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := first.Record(context.Background(), time.Now(), testJob(), nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	first.Close()

	second, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	runs, err := second.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen, want 1", len(runs))
	}
}
