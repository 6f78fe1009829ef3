// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/lectern/pkg/types"
)

func TestGetMiss(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache"))
	_, ok, err := s.Get("no-such-key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("Get on empty store reported a hit")
	}
}

func TestPutThenGet(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache"))
	key := Key("dochash", 1, "prompt", types.ProviderOpenAI, "gpt-4o", 200)

	if err := s.Put(key, "This slide introduces binary search."); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if got != "This slide introduces binary search." {
		t.Errorf("Get = %q, want stored explanation verbatim", got)
	}
}

func TestKeyIsStable(t *testing.T) {
	k1 := Key("doc", 3, "explain this", types.ProviderClaude, "claude-3-5-sonnet-20241022", 200)
	k2 := Key("doc", 3, "explain this", types.ProviderClaude, "claude-3-5-sonnet-20241022", 200)
	if k1 != k2 {
		t.Errorf("identical inputs produced different keys: %s vs %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
}

func TestKeyBindsEveryComponent(t *testing.T) {
	base := Key("doc", 3, "prompt", types.ProviderOpenAI, "gpt-4o", 200)

	variants := map[string]string{
		"document": Key("other-doc", 3, "prompt", types.ProviderOpenAI, "gpt-4o", 200),
		"page":     Key("doc", 4, "prompt", types.ProviderOpenAI, "gpt-4o", 200),
		"prompt":   Key("doc", 3, "another prompt", types.ProviderOpenAI, "gpt-4o", 200),
		"provider": Key("doc", 3, "prompt", types.ProviderGemini, "gpt-4o", 200),
		"model":    Key("doc", 3, "prompt", types.ProviderOpenAI, "gpt-4o-mini", 200),
		"dpi":      Key("doc", 3, "prompt", types.ProviderOpenAI, "gpt-4o", 300),
	}

	for component, key := range variants {
		if key == base {
			t.Errorf("changing %s did not change the key", component)
		}
	}
}

func TestDocumentHash(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.pdf")
	p2 := filepath.Join(dir, "b.pdf")
	if err := os.WriteFile(p1, []byte("same content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p2, []byte("same content"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := DocumentHash(p1)
	if err != nil {
		t.Fatalf("DocumentHash: %v", err)
	}
	h2, err := DocumentHash(p2)
	if err != nil {
		t.Fatalf("DocumentHash: %v", err)
	}
	// Identity follows content, not the file name.
	if h1 != h2 {
		t.Errorf("same content hashed differently: %s vs %s", h1, h2)
	}

	if err := os.WriteFile(p2, []byte("different content"), 0o644); err != nil {
		t.Fatal(err)
	}
	h3, err := DocumentHash(p2)
	if err != nil {
		t.Fatal(err)
	}
	if h3 == h1 {
		t.Error("different content produced the same hash")
	}
}

func TestDocumentHashMissingFile(t *testing.T) {
	_, err := DocumentHash(filepath.Join(t.TempDir(), "missing.pdf"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestStatsAndClear(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache"))

	entries, size, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats on missing dir: %v", err)
	}
	if entries != 0 || size != 0 {
		t.Errorf("Stats = (%d, %d), want (0, 0)", entries, size)
	}

	if err := s.Put("k1", "one"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k2", "twotwo"); err != nil {
		t.Fatal(err)
	}

	entries, size, err = s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if entries != 2 {
		t.Errorf("entries = %d, want 2", entries)
	}
	if size != int64(len("one")+len("twotwo")) {
		t.Errorf("size = %d, want %d", size, len("one")+len("twotwo"))
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Get("k1"); ok {
		t.Error("entry survived Clear")
	}
}

func TestPutOverwriteKeepsEntryReadable(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "cache"))
	if err := s.Put("k", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("k", "first"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after double Put: ok=%v err=%v", ok, err)
	}
	if got != "first" {
		t.Errorf("Get = %q, want %q", got, "first")
	}
}
