// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the run configuration from viper, the process
// environment, and the .secrets/ directory. The resulting Config value is
// constructed once at startup and passed by reference to each component;
// nothing else in the pipeline reads configuration ambiently.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/lectern/pkg/types"
)

// DefaultPrompt is the per-page instruction sent to the model when the user
// does not supply one.
const DefaultPrompt = `You are an experienced lecturer. Analyze this slide and explain it in detail.

Cover the following:
1. Topic: what is the main subject of this slide?
2. Key concepts: list and explain the important concepts, definitions, or terms.
3. Formulas and figures: if there are formulas, charts, or diagrams, explain what they mean.
4. Difficult points: call out the parts a student is likely to find hard.
5. Summary: restate the slide's main takeaways in a few sentences.

Answer in clear, plain language, as if explaining to a student.`

// Default model identifiers per provider.
var defaultModels = map[types.Provider]string{
	types.ProviderOpenAI: "gpt-4o",
	types.ProviderClaude: "claude-3-5-sonnet-20241022",
	types.ProviderGemini: "gemini-1.5-pro",
}

// apiKeyEnv maps each provider to the conventional environment variable for
// its credential.
var apiKeyEnv = map[types.Provider]string{
	types.ProviderOpenAI: "OPENAI_API_KEY",
	types.ProviderClaude: "ANTHROPIC_API_KEY",
	types.ProviderGemini: "GOOGLE_API_KEY",
}

// secretFile maps each provider to its key file name under .secrets/.
var secretFile = map[types.Provider]string{
	types.ProviderOpenAI: "openai-api-key",
	types.ProviderClaude: "anthropic-api-key",
	types.ProviderGemini: "google-api-key",
}

// Config is the resolved run configuration.
type Config struct {
	// Provider selects the LLM vendor.
	Provider types.Provider

	// APIKey is the credential for the selected provider.
	APIKey string

	// Model is the model identifier. Defaults per provider.
	Model string

	// Prompt is the per-page instruction template.
	Prompt string

	// DPI is the page render resolution.
	DPI int

	// ImageFormat is "png" or "jpg".
	ImageFormat string

	// JPEGQuality applies when ImageFormat is "jpg" (1-100).
	JPEGQuality int

	// Concurrency bounds the worker pool and with it the request rate.
	Concurrency int

	// MaxRetries bounds retry attempts for transient LLM failures.
	MaxRetries int

	// RequestTimeout bounds one LLM round trip.
	RequestTimeout time.Duration

	// IncludePageText feeds extracted page text to the model as auxiliary
	// context alongside the image.
	IncludePageText bool

	// CacheEnabled controls the explanation cache.
	CacheEnabled bool
}

// SetDefaults registers configuration defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm_provider", string(types.ProviderOpenAI))
	v.SetDefault("image_dpi", 200)
	v.SetDefault("image_format", "png")
	v.SetDefault("jpeg_quality", 85)
	v.SetDefault("concurrency", 3)
	v.SetDefault("max_retries", 3)
	v.SetDefault("request_timeout", "60s")
	v.SetDefault("include_page_text", true)
	v.SetDefault("cache_enabled", true)
	v.SetDefault("prompt_template", DefaultPrompt)
}

// Load builds a Config from the viper instance and the loaded secrets map.
// The API key for the selected provider is resolved in order: explicit
// viper key (api_key), the provider's conventional environment variable,
// then the .secrets/ key file.
func Load(v *viper.Viper, secrets map[string]string) (*Config, error) {
	provider := types.Provider(v.GetString("llm_provider"))

	cfg := &Config{
		Provider:        provider,
		APIKey:          resolveAPIKey(v, secrets, provider),
		Model:           v.GetString("model"),
		Prompt:          v.GetString("prompt_template"),
		DPI:             v.GetInt("image_dpi"),
		ImageFormat:     v.GetString("image_format"),
		JPEGQuality:     v.GetInt("jpeg_quality"),
		Concurrency:     v.GetInt("concurrency"),
		MaxRetries:      v.GetInt("max_retries"),
		RequestTimeout:  v.GetDuration("request_timeout"),
		IncludePageText: v.GetBool("include_page_text"),
		CacheEnabled:    v.GetBool("cache_enabled"),
	}

	if cfg.Model == "" {
		cfg.Model = defaultModels[provider]
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveAPIKey(v *viper.Viper, secrets map[string]string, provider types.Provider) string {
	if key := v.GetString("api_key"); key != "" {
		return key
	}
	if env, ok := apiKeyEnv[provider]; ok {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}
	if file, ok := secretFile[provider]; ok {
		if key := secrets[file]; key != "" {
			return key
		}
	}
	return ""
}

// Validate checks the configuration. All failures are fatal and reported as
// *types.ConfigError before any page work starts.
func (c *Config) Validate() error {
	if !c.Provider.Valid() {
		return &types.ConfigError{Reason: fmt.Sprintf(
			"unknown LLM provider %q (supported: openai, claude, gemini)", c.Provider)}
	}
	if c.APIKey == "" {
		return &types.ConfigError{Reason: fmt.Sprintf(
			"no API key for provider %q: set %s or .secrets/%s",
			c.Provider, apiKeyEnv[c.Provider], secretFile[c.Provider])}
	}
	if c.DPI < 36 || c.DPI > 600 {
		return &types.ConfigError{Reason: fmt.Sprintf("image_dpi %d out of range [36, 600]", c.DPI)}
	}
	if c.ImageFormat != "png" && c.ImageFormat != "jpg" {
		return &types.ConfigError{Reason: fmt.Sprintf("image_format %q must be png or jpg", c.ImageFormat)}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return &types.ConfigError{Reason: fmt.Sprintf("jpeg_quality %d out of range [1, 100]", c.JPEGQuality)}
	}
	if c.Concurrency < 1 {
		return &types.ConfigError{Reason: fmt.Sprintf("concurrency %d must be at least 1", c.Concurrency)}
	}
	if c.MaxRetries < 0 {
		return &types.ConfigError{Reason: fmt.Sprintf("max_retries %d must not be negative", c.MaxRetries)}
	}
	return nil
}

// MediaType returns the MIME type matching ImageFormat.
func (c *Config) MediaType() string {
	if c.ImageFormat == "jpg" {
		return "image/jpeg"
	}
	return "image/png"
}
