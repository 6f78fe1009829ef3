// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output assembles per-page explanation results into the final
// documents: Markdown, an optional HTML rendition, and a run manifest.
// Generation is deterministic: the same page set and explanations yield
// byte-identical output.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/lectern/pkg/types"
)

// MarkdownFileName is the Markdown document written to the output directory.
const MarkdownFileName = "lecture_explained.md"

// failureMarker opens the body of a failed page section.
const failureMarker = "**Analysis failed:**"

// WriteMarkdown renders the results into outDir/lecture_explained.md with
// one section per page in ascending page order, and returns the file path.
func WriteMarkdown(outDir string, job types.Job, results []types.ExplanationResult) (string, error) {
	content := RenderMarkdown(job, results)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, MarkdownFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", MarkdownFileName, err)
	}
	return path, nil
}

// RenderMarkdown builds the Markdown document. Results are sorted by page
// index so the output ordering invariant holds regardless of how the caller
// ordered them.
func RenderMarkdown(job types.Job, results []types.ExplanationResult) string {
	ordered := make([]types.ExplanationResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Page < ordered[j].Page })

	var b strings.Builder
	fmt.Fprintf(&b, "# Lecture Notes: %s\n\n", filepath.Base(job.Document.Path))
	fmt.Fprintf(&b, "Generated with %s (%s), %d page(s) processed.\n", job.Provider, job.Model, len(ordered))

	for _, r := range ordered {
		fmt.Fprintf(&b, "\n---\n\n## Page %d\n\n", r.Page)
		if r.ImagePath != "" {
			fmt.Fprintf(&b, "![Page %d](%s)\n\n", r.Page, filepath.ToSlash(r.ImagePath))
		}
		if r.Status.Succeeded() {
			b.WriteString(strings.TrimSpace(r.Explanation))
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "%s %s\n", failureMarker, r.Err)
		}
	}
	return b.String()
}
