// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/lectern/pkg/types"
)

func newViper(t *testing.T, overrides map[string]any) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := newViper(t, map[string]any{"api_key": "sk-test"})

	cfg, err := Load(v, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != types.ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want default openai model", cfg.Model)
	}
	if cfg.DPI != 200 {
		t.Errorf("DPI = %d, want 200", cfg.DPI)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("RequestTimeout = %v, want 60s", cfg.RequestTimeout)
	}
	if cfg.Prompt == "" {
		t.Error("Prompt is empty, want default prompt")
	}
	if !cfg.CacheEnabled {
		t.Error("CacheEnabled = false, want true")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	// No api_key, no env var for a provider we invent the env absence for.
	t.Setenv("ANTHROPIC_API_KEY", "")
	v := newViper(t, map[string]any{"llm_provider": "claude"})

	_, err := Load(v, nil)
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	var cfgErr *types.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %T, want *types.ConfigError", err)
	}
	if !strings.Contains(cfgErr.Reason, "claude") {
		t.Errorf("Reason = %q, want provider name mentioned", cfgErr.Reason)
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	v := newViper(t, map[string]any{"llm_provider": "bard", "api_key": "x"})

	_, err := Load(v, nil)
	var cfgErr *types.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *types.ConfigError", err)
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")
	v := newViper(t, map[string]any{"llm_provider": "gemini"})

	cfg, err := Load(v, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.APIKey)
	}
	if cfg.Model != "gemini-1.5-pro" {
		t.Errorf("Model = %q, want default gemini model", cfg.Model)
	}
}

func TestAPIKeyFromSecrets(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	v := newViper(t, map[string]any{"llm_provider": "claude"})
	secrets := map[string]string{"anthropic-api-key": "file-key"}

	cfg, err := Load(v, secrets)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file-key", cfg.APIKey)
	}
}

func TestExplicitKeyWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	v := newViper(t, map[string]any{"api_key": "flag-key"})

	cfg, err := Load(v, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "flag-key" {
		t.Errorf("APIKey = %q, want flag-key", cfg.APIKey)
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
	}{
		{"dpi too low", map[string]any{"image_dpi": 10}},
		{"dpi too high", map[string]any{"image_dpi": 1200}},
		{"bad image format", map[string]any{"image_format": "bmp"}},
		{"jpeg quality out of range", map[string]any{"jpeg_quality": 0}},
		{"zero concurrency", map[string]any{"concurrency": 0}},
		{"negative retries", map[string]any{"max_retries": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.overrides["api_key"] = "sk-test"
			v := newViper(t, tt.overrides)
			_, err := Load(v, nil)
			var cfgErr *types.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *types.ConfigError", err)
			}
		})
	}
}

func TestMediaType(t *testing.T) {
	if got := (&Config{ImageFormat: "png"}).MediaType(); got != "image/png" {
		t.Errorf("MediaType(png) = %q", got)
	}
	if got := (&Config{ImageFormat: "jpg"}).MediaType(); got != "image/jpeg" {
		t.Errorf("MediaType(jpg) = %q", got)
	}
}
