// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives the per-page processing: cache lookup, page
// rendering, the LLM call, and result collection. Pages are processed by a
// bounded worker pool; the pool size doubles as the request rate control.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/lectern/internal/cache"
	"github.com/pdiddy/lectern/internal/config"
	"github.com/pdiddy/lectern/internal/llm"
	"github.com/pdiddy/lectern/internal/render"
	"github.com/pdiddy/lectern/pkg/types"
)

// imagesDirName is the subdirectory under the output base for page images.
const imagesDirName = "images"

// Options wires the collaborators for one run. Every dependency is injected;
// the pipeline holds no global state.
type Options struct {
	Config   *config.Config
	Renderer render.Renderer
	Client   llm.Client

	// Cache may be nil to disable explanation caching.
	Cache *cache.Store

	// OutputDir is the run's output base; page images land under
	// OutputDir/images/.
	OutputDir string

	// Progress, when set, is called with a monotonic completed count after
	// each page reaches a terminal state, independent of completion order.
	Progress func(done, total int)

	// Status receives per-page status lines. Defaults to io.Discard.
	Status io.Writer
}

// Run processes every page of the job and returns one ExplanationResult per
// page, ordered by ascending page index regardless of completion order.
// Per-page failures are recorded in their result and do not abort sibling
// pages; Run itself fails only on cancellation.
func Run(ctx context.Context, job types.Job, opts Options) ([]types.ExplanationResult, error) {
	status := opts.Status
	if status == nil {
		status = io.Discard
	}

	total := len(job.Pages)
	results := make([]types.ExplanationResult, total)

	var done int64
	var progressMu sync.Mutex
	report := func() {
		n := int(atomic.AddInt64(&done, 1))
		if opts.Progress != nil {
			progressMu.Lock()
			opts.Progress(n, total)
			progressMu.Unlock()
		}
	}

	// go-fitz documents are not safe for concurrent use; rendering is
	// serialized while LLM calls overlap freely.
	var renderMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Config.Concurrency)

	for i, page := range job.Pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = processPage(ctx, job, page, opts, &renderMu, status)
			report()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processPage runs one page through the state machine
// Pending → (CacheHit | Rendering → Calling → (Done | Failed)).
func processPage(ctx context.Context, job types.Job, page int, opts Options, renderMu *sync.Mutex, status io.Writer) types.ExplanationResult {
	result := types.ExplanationResult{
		Page:      page,
		Status:    types.PagePending,
		ImagePath: filepath.Join(imagesDirName, render.ImageFileName(page, opts.Config.ImageFormat)),
	}

	var key string
	if opts.Cache != nil {
		key = cache.Key(job.Document.ContentHash, page, job.Prompt, job.Provider, job.Model, job.DPI)
		if text, ok, err := opts.Cache.Get(key); err == nil && ok {
			fmt.Fprintf(status, "page %d: cache hit\n", page)
			result.Status = types.PageCacheHit
			result.Explanation = text
			return result
		}
	}

	// Rendering.
	result.Status = types.PageRendering
	renderMu.Lock()
	img, err := opts.Renderer.RenderPage(page, job.DPI)
	var pageText string
	if err == nil && opts.Config.IncludePageText {
		// Best effort; a text extraction failure never fails the page.
		pageText, _ = opts.Renderer.PageText(page)
	}
	renderMu.Unlock()
	if err != nil {
		fmt.Fprintf(status, "page %d: render failed: %v\n", page, err)
		result.Status = types.PageFailed
		result.Err = err.Error()
		return result
	}

	encoded, err := render.Encode(img, opts.Config.ImageFormat, opts.Config.JPEGQuality)
	if err != nil {
		result.Status = types.PageFailed
		result.Err = err.Error()
		return result
	}
	if _, err := render.SaveImage(filepath.Join(opts.OutputDir, imagesDirName), page, encoded, opts.Config.ImageFormat); err != nil {
		result.Status = types.PageFailed
		result.Err = err.Error()
		return result
	}

	// Calling.
	result.Status = types.PageCalling
	text, err := opts.Client.Explain(ctx, llm.Request{
		Page:      page,
		Image:     encoded,
		MediaType: opts.Config.MediaType(),
		Prompt:    job.Prompt,
		PageText:  pageText,
	})
	if err != nil {
		callErr := &types.LLMCallError{Page: page, Provider: job.Provider, Err: err}
		fmt.Fprintf(status, "page %d: %v\n", page, callErr)
		result.Status = types.PageFailed
		result.Err = callErr.Error()
		return result
	}

	if opts.Cache != nil {
		if err := opts.Cache.Put(key, text); err != nil {
			fmt.Fprintf(status, "page %d: warning: cache write failed: %v\n", page, err)
		}
	}

	fmt.Fprintf(status, "page %d: done\n", page)
	result.Status = types.PageDone
	result.Explanation = text
	return result
}

// Summary aggregates terminal page states for reporting.
type Summary struct {
	Done     int
	CacheHit int
	Failed   int
}

// Summarize counts the terminal states in a result set.
func Summarize(results []types.ExplanationResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case types.PageDone:
			s.Done++
		case types.PageCacheHit:
			s.CacheHit++
		case types.PageFailed:
			s.Failed++
		}
	}
	return s
}

// Total returns the number of terminal pages counted.
func (s Summary) Total() int {
	return s.Done + s.CacheHit + s.Failed
}

// HasFailures reports whether any page failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}
