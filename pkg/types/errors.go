// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrPageRangeInvalid marks a malformed or out-of-bounds page selector.
// Fatal: bad user input aborts the job before any page is processed.
var ErrPageRangeInvalid = errors.New("invalid page range")

// ErrDocumentUnreadable marks a source PDF that cannot be opened or parsed.
// Fatal for the whole job.
var ErrDocumentUnreadable = errors.New("document unreadable")

// ConfigError is a fatal configuration problem (missing API key, unknown
// provider). It is detected before any work starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// LLMCallError is a per-page failure after retries were exhausted or a
// permanent provider error occurred. It is recorded in the output and does
// not abort sibling pages.
type LLMCallError struct {
	Page     int
	Provider Provider
	Err      error
}

func (e *LLMCallError) Error() string {
	return fmt.Sprintf("LLM call for page %d (%s) failed: %v", e.Page, e.Provider, e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }
