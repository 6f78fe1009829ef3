// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lectern/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List earlier runs recorded in the output directory",
	Long: `History lists runs recorded in the run ledger under the output directory,
newest first. Use --failed with a run ID to print the pages that failed in
that run, in a form --pages accepts for a retry.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("output")
	limit, _ := cmd.Flags().GetInt("limit")
	failedRun, _ := cmd.Flags().GetInt64("failed")

	store, err := ledger.Open(outDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if failedRun != 0 {
		pages, err := store.FailedPages(context.Background(), failedRun)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			fmt.Println("No failed pages.")
			return nil
		}
		specs := make([]string, len(pages))
		for i, p := range pages {
			specs[i] = fmt.Sprintf("%d", p)
		}
		fmt.Println(strings.Join(specs, ","))
		return nil
	}

	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-19s  %-30s  %-8s  %-6s  %-5s  %-5s  %s\n",
		"ID", "Started", "Document", "Provider", "Pages", "Done", "Hits", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))

	for _, r := range runs {
		doc := filepath.Base(r.DocumentPath)
		if len(doc) > 30 {
			doc = doc[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-19s  %-30s  %-8s  %-6d  %-5d  %-5d  %d\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), doc, r.Provider,
			r.PagesTotal, r.Done, r.CacheHits, r.Failed)
	}
	return nil
}

func init() {
	historyCmd.Flags().StringP("output", "o", "output", "output directory holding the run ledger")
	historyCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	historyCmd.Flags().Int64("failed", 0, "print the failed pages of the given run ID")

	rootCmd.AddCommand(historyCmd)
}
