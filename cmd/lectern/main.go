// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lectern CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lectern/internal/config"
	"github.com/pdiddy/lectern/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the lectern CLI.
var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Turn PDF slide decks into explained lecture notes",
	Long: `lectern rasterizes each page of a PDF slide deck, sends the page image to a
multimodal LLM with a lecturer-style prompt, and assembles the per-page
explanations into a single Markdown document with embedded page images.

Explanations are cached by document content, so re-running over the same deck
only pays for pages that changed. Use subcommands to process a deck, inspect
run history, or manage the cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; a missing file is not an error.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lectern.yaml or ~/.config/lectern/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lectern")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lectern"))
		}
	}

	config.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix("LECTERN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
