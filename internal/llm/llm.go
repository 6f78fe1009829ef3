// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm sends one page image plus a prompt to a multimodal LLM
// provider and returns the explanatory text. The provider set is closed:
// OpenAI, Claude, and Gemini variants differ only in request and response
// shape, not in contract.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/lectern/internal/config"
	"github.com/pdiddy/lectern/pkg/types"
)

// maxPageTextContext bounds how much extracted page text is appended to the
// prompt as auxiliary context.
const maxPageTextContext = 500

// Request carries one rendered page and the instruction for explaining it.
type Request struct {
	// Page is the 1-based page number, included in the prompt so the model
	// can reference it.
	Page int

	// Image is the encoded raster image of the page.
	Image []byte

	// MediaType is the MIME type of Image ("image/png" or "image/jpeg").
	MediaType string

	// Prompt is the per-page instruction template.
	Prompt string

	// PageText is optional extracted page text, appended (truncated) as
	// auxiliary context.
	PageText string
}

// Client submits a page image and prompt to one provider and returns the
// explanation text. Transient failures (rate limit, timeout, 5xx) are
// retried internally with backoff up to the configured attempt bound;
// permanent failures (bad key, malformed request) fail immediately.
type Client interface {
	Explain(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx provider response that survived the retry budget.
type APIError struct {
	Provider types.Provider
	Status   int
	Body     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.Status, e.Body)
}

// New builds the provider client selected by the configuration. Provider
// dispatch happens exactly once, here; the rest of the pipeline sees only
// the Client interface.
func New(cfg *config.Config) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	switch cfg.Provider {
	case types.ProviderOpenAI:
		return &OpenAIClient{
			apiKey:     cfg.APIKey,
			model:      cfg.Model,
			maxRetries: cfg.MaxRetries,
			httpClient: httpClient,
			baseURL:    openAIBaseURL,
		}, nil
	case types.ProviderClaude:
		return &ClaudeClient{
			apiKey:     cfg.APIKey,
			model:      cfg.Model,
			maxRetries: cfg.MaxRetries,
			httpClient: httpClient,
			baseURL:    claudeBaseURL,
		}, nil
	case types.ProviderGemini:
		return &GeminiClient{
			apiKey:     cfg.APIKey,
			model:      cfg.Model,
			maxRetries: cfg.MaxRetries,
			httpClient: httpClient,
			baseURL:    geminiBaseURL,
		}, nil
	default:
		return nil, &types.ConfigError{Reason: fmt.Sprintf("unknown LLM provider %q", cfg.Provider)}
	}
}

// buildPrompt composes the full per-page prompt: page header, instruction
// template, and optional truncated page text context.
func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Page %d]\n\n%s", req.Page, req.Prompt)

	text := strings.TrimSpace(req.PageText)
	if text != "" {
		if len(text) > maxPageTextContext {
			text = text[:maxPageTextContext]
		}
		fmt.Fprintf(&b, "\n\nText extracted from this page:\n%s", text)
	}
	return b.String()
}
