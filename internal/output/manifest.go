// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lectern/pkg/types"
)

// ManifestFileName is the run manifest written to the output directory.
const ManifestFileName = "manifest.yaml"

// Manifest records what one run processed and how each page ended.
type Manifest struct {
	Document types.Document            `yaml:"document"`
	Provider types.Provider            `yaml:"provider"`
	Model    string                    `yaml:"model"`
	DPI      int                       `yaml:"dpi"`
	Pages    []types.ExplanationResult `yaml:"pages"`
}

// WriteManifest serializes the run manifest to outDir/manifest.yaml and
// returns the file path.
func WriteManifest(outDir string, job types.Job, results []types.ExplanationResult) (string, error) {
	ordered := make([]types.ExplanationResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Page < ordered[j].Page })

	m := Manifest{
		Document: job.Document,
		Provider: job.Provider,
		Model:    job.Model,
		DPI:      job.DPI,
		Pages:    ordered,
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, ManifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", ManifestFileName, err)
	}
	return path, nil
}
