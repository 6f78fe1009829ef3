// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lectern/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the explanation cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cacheStore(cmd)
		entries, size, err := store.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d entries, %d bytes\n", store.Dir(), entries, size)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached explanation",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cacheStore(cmd)
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared:", store.Dir())
		return nil
	},
}

func cacheStore(cmd *cobra.Command) *cache.Store {
	outDir, _ := cmd.Flags().GetString("output")
	return cache.New(filepath.Join(outDir, "cache"))
}

func init() {
	cacheCmd.PersistentFlags().StringP("output", "o", "output", "output directory holding the cache")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
