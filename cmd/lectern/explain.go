// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lectern/internal/cache"
	"github.com/pdiddy/lectern/internal/config"
	"github.com/pdiddy/lectern/internal/ledger"
	"github.com/pdiddy/lectern/internal/llm"
	"github.com/pdiddy/lectern/internal/output"
	"github.com/pdiddy/lectern/internal/pageset"
	"github.com/pdiddy/lectern/internal/pipeline"
	"github.com/pdiddy/lectern/internal/render"
	"github.com/pdiddy/lectern/pkg/types"
)

var explainCmd = &cobra.Command{
	Use:     "explain [pdf]",
	Aliases: []string{"run"},
	Short:   "Explain every page of a PDF slide deck with a multimodal LLM",
	Long: `Explain renders each selected page of the deck to an image, asks the
configured LLM to explain it, and writes lecture_explained.md (plus page
images) to the output directory.

Cached explanations are reused when the document content, page, prompt,
provider, model, and resolution all match an earlier run. A failed page is
recorded in place and does not stop its siblings.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("output")
	pagesSpec, _ := cmd.Flags().GetString("pages")
	format, _ := cmd.Flags().GetString("format")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	prompt, _ := cmd.Flags().GetString("prompt")
	promptFile, _ := cmd.Flags().GetString("prompt-file")

	if format != "markdown" && format != "html" && format != "both" {
		return &types.ConfigError{Reason: fmt.Sprintf("format %q must be markdown, html, or both", format)}
	}
	if prompt != "" && promptFile != "" {
		return &types.ConfigError{Reason: "--prompt and --prompt-file are mutually exclusive"}
	}
	if prompt != "" {
		cfg.Prompt = prompt
	}
	if promptFile != "" {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return fmt.Errorf("reading prompt file: %w", err)
		}
		cfg.Prompt = string(data)
	}

	sel, err := pageset.Parse(pagesSpec)
	if err != nil {
		return err
	}

	pdfPath := args[0]
	contentHash, err := cache.DocumentHash(pdfPath)
	if err != nil {
		return err
	}

	renderer, err := render.Open(pdfPath)
	if err != nil {
		return err
	}
	defer renderer.Close()

	pages, err := sel.Resolve(renderer.PageCount())
	if err != nil {
		return err
	}

	client, err := llm.New(cfg)
	if err != nil {
		return err
	}

	var store *cache.Store
	if cfg.CacheEnabled && !noCache {
		store = cache.New(filepath.Join(outDir, "cache"))
	}

	job := types.Job{
		Document: types.Document{
			Path:        pdfPath,
			ContentHash: contentHash,
			PageCount:   renderer.PageCount(),
		},
		Pages:    pages,
		Prompt:   cfg.Prompt,
		Provider: cfg.Provider,
		Model:    cfg.Model,
		DPI:      cfg.DPI,
	}

	fmt.Fprintf(os.Stderr, "%s: %d of %d page(s), %s (%s), estimated cost %s\n",
		filepath.Base(pdfPath), len(pages), renderer.PageCount(),
		cfg.Provider, cfg.Model, llm.FormatCost(llm.EstimateCost(len(pages), cfg.Provider)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now()
	results, err := pipeline.Run(ctx, job, pipeline.Options{
		Config:    cfg,
		Renderer:  renderer,
		Client:    client,
		Cache:     store,
		OutputDir: outDir,
		Status:    os.Stderr,
		Progress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "progress: %d/%d\n", done, total)
		},
	})
	if err != nil {
		return err
	}

	if format == "markdown" || format == "both" {
		path, err := output.WriteMarkdown(outDir, job, results)
		if err != nil {
			return err
		}
		fmt.Println("Wrote", path)
	}
	if format == "html" || format == "both" {
		path, err := output.WriteHTML(outDir, job, results)
		if err != nil {
			return err
		}
		fmt.Println("Wrote", path)
	}
	if _, err := output.WriteManifest(outDir, job, results); err != nil {
		return err
	}

	if runs, err := ledger.Open(outDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: run ledger unavailable: %v\n", err)
	} else {
		if _, err := runs.Record(ctx, startedAt, job, results); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run failed: %v\n", err)
		}
		runs.Close()
	}

	// Per-page failures are recorded in the document; the run itself
	// succeeded once the outputs are written.
	summary := pipeline.Summarize(results)
	fmt.Printf("done: %d, cache hits: %d, failed: %d\n", summary.Done, summary.CacheHit, summary.Failed)
	if summary.HasFailures() {
		fmt.Fprintf(os.Stderr, "%d page(s) failed; see %s for details\n", summary.Failed, output.MarkdownFileName)
	}
	return nil
}

func init() {
	explainCmd.Flags().StringP("output", "o", "output", "output directory for the document, images, and cache")
	explainCmd.Flags().String("llm", "", "LLM provider: openai, claude, or gemini")
	explainCmd.Flags().String("model", "", "model identifier (defaults per provider)")
	explainCmd.Flags().String("pages", "", "pages to process, e.g. 5, 3-8, or 1-5,7 (default: all)")
	explainCmd.Flags().Int("dpi", 0, "page render resolution")
	explainCmd.Flags().String("image-format", "", "page image format: png or jpg")
	explainCmd.Flags().String("format", "markdown", "output format: markdown, html, or both")
	explainCmd.Flags().String("prompt", "", "custom per-page prompt text")
	explainCmd.Flags().String("prompt-file", "", "file containing a custom per-page prompt")
	explainCmd.Flags().Int("concurrency", 0, "number of pages processed in parallel")
	explainCmd.Flags().Bool("no-cache", false, "bypass the explanation cache")

	viper.BindPFlag("llm_provider", explainCmd.Flags().Lookup("llm"))
	viper.BindPFlag("model", explainCmd.Flags().Lookup("model"))
	viper.BindPFlag("image_dpi", explainCmd.Flags().Lookup("dpi"))
	viper.BindPFlag("image_format", explainCmd.Flags().Lookup("image-format"))
	viper.BindPFlag("concurrency", explainCmd.Flags().Lookup("concurrency"))

	rootCmd.AddCommand(explainCmd)
}
