// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores page explanations in a local durable directory, one
// file per key. Entries are immutable once written and never expire;
// deleting the directory forces reprocessing.
package cache

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/lectern/pkg/types"
)

// Store is a file-per-key explanation cache rooted at one directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily on the
// first Put.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// Key derives the cache key for one page explanation. It binds the document
// content, the page index, the prompt, the provider, the model, and the
// render resolution: changing any of them forces recomputation.
func Key(docHash string, page int, prompt string, provider types.Provider, model string, dpi int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s\x00%s\x00%s\x00%d", docHash, page, prompt, provider, model, dpi)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// DocumentHash returns the hex SHA-256 of the file contents at path.
func DocumentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", types.ErrDocumentUnreadable, path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Get returns the cached explanation for key, and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading cache entry %s: %w", key, err)
	}
	return string(data), true, nil
}

// Put writes an explanation under key. The write is atomic (temp file then
// rename) so a concurrent double-write on the same key degrades to
// redundant computation, never a corrupt entry.
func (s *Store) Put(key, explanation string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(explanation); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cache temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing cache entry %s: %w", key, err)
	}
	return nil
}

// Stats reports the number of entries and their total size in bytes.
func (s *Store) Stats() (entries int, size int64, err error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		entries++
		size += info.Size()
	}
	return entries, size, nil
}

// Clear removes the cache directory and everything in it.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}
