// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pageset parses page selectors like "1-5,7,10-12" into ordered
// page index sets.
package pageset

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/lectern/pkg/types"
)

// Selector is a parsed page selector. The zero value selects all pages.
type Selector struct {
	terms []term
}

// term is one comma-separated element: a single page or an inclusive range.
type term struct {
	start, end int
}

// Parse validates a selector string. The empty string selects all pages.
// Each comma-separated term is either a single 1-based page number or an
// inclusive range "N-M" with N <= M. Malformed input returns an error
// wrapping types.ErrPageRangeInvalid.
func Parse(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, nil
	}

	var sel Selector
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Selector{}, fmt.Errorf("%w: empty term in %q", types.ErrPageRangeInvalid, s)
		}

		if start, end, ok := strings.Cut(part, "-"); ok {
			lo, err := parsePage(start)
			if err != nil {
				return Selector{}, err
			}
			hi, err := parsePage(end)
			if err != nil {
				return Selector{}, err
			}
			if hi < lo {
				return Selector{}, fmt.Errorf("%w: reversed range %q", types.ErrPageRangeInvalid, part)
			}
			sel.terms = append(sel.terms, term{start: lo, end: hi})
			continue
		}

		n, err := parsePage(part)
		if err != nil {
			return Selector{}, err
		}
		sel.terms = append(sel.terms, term{start: n, end: n})
	}
	return sel, nil
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a page number", types.ErrPageRangeInvalid, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: page numbers start at 1, got %d", types.ErrPageRangeInvalid, n)
	}
	return n, nil
}

// All reports whether the selector selects every page.
func (s Selector) All() bool {
	return len(s.terms) == 0
}

// Resolve expands the selector against a document with totalPages pages and
// returns the selected page numbers, ascending and deduplicated. Indices
// beyond totalPages return an error wrapping types.ErrPageRangeInvalid.
func (s Selector) Resolve(totalPages int) ([]int, error) {
	if totalPages < 1 {
		return nil, fmt.Errorf("%w: document has no pages", types.ErrPageRangeInvalid)
	}

	if s.All() {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := make(map[int]bool)
	for _, t := range s.terms {
		if t.end > totalPages {
			return nil, fmt.Errorf("%w: page %d out of bounds (document has %d pages)",
				types.ErrPageRangeInvalid, t.end, totalPages)
		}
		for p := t.start; p <= t.end; p++ {
			seen[p] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages, nil
}
