// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the value types shared across pipeline stages.
package types

// Provider identifies a multimodal LLM vendor.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

// Valid reports whether p is one of the supported providers.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderClaude, ProviderGemini:
		return true
	}
	return false
}

// PageStatus tracks a page through the processing state machine:
// Pending → (CacheHit | Rendering → Calling → (Done | Failed)).
type PageStatus string

const (
	PagePending   PageStatus = "pending"
	PageCacheHit  PageStatus = "cache-hit"
	PageRendering PageStatus = "rendering"
	PageCalling   PageStatus = "calling"
	PageDone      PageStatus = "done"
	PageFailed    PageStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s PageStatus) Terminal() bool {
	return s == PageCacheHit || s == PageDone || s == PageFailed
}

// Succeeded reports whether the page produced a usable explanation.
func (s PageStatus) Succeeded() bool {
	return s == PageCacheHit || s == PageDone
}

// Document describes a source PDF.
type Document struct {
	// Path is the filesystem path to the PDF.
	Path string `json:"path" yaml:"path"`

	// ContentHash is the hex SHA-256 of the file contents. It ties cache
	// entries to the exact bytes of the document, not its name.
	ContentHash string `json:"content_hash" yaml:"content_hash"`

	// PageCount is the total number of pages in the document.
	PageCount int `json:"page_count" yaml:"page_count"`
}

// Page is one rendered page of a document.
type Page struct {
	// Number is the 1-based page index in the source document.
	Number int

	// PNG-or-JPEG encoded raster image of the page.
	Image []byte

	// MediaType is the MIME type of Image ("image/png" or "image/jpeg").
	MediaType string

	// ImagePath is where the rendered image was persisted, if anywhere.
	ImagePath string

	// Text is the extracted page text, used as auxiliary context for the
	// model. May be empty.
	Text string
}

// Job is one processing request: a document, the pages to process, and the
// prompt/provider configuration under which to process them.
type Job struct {
	Document Document `yaml:"document"`

	// Pages are the resolved 1-based page numbers, ascending.
	Pages []int `yaml:"pages"`

	Prompt   string   `yaml:"prompt"`
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`

	// DPI is the render resolution. It participates in the cache key since
	// it changes what the model sees.
	DPI int `yaml:"dpi"`
}

// ExplanationResult is the outcome for one page.
type ExplanationResult struct {
	// Page is the 1-based page number.
	Page int `yaml:"page"`

	// Explanation is the model's text for the page. Empty when Status is
	// PageFailed.
	Explanation string `yaml:"-"`

	Status PageStatus `yaml:"status"`

	// Err holds the failure detail when Status is PageFailed.
	Err string `yaml:"error,omitempty"`

	// ImagePath is the persisted page image, relative to the output
	// directory.
	ImagePath string `yaml:"image,omitempty"`
}
