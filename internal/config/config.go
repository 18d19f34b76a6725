// Package config handles environment-backed configuration for the
// extraction pipeline: service credentials and rate-limit intervals.
package config

import (
	"fmt"
	"os"
	"time"
)

// Environment variable names.
const (
	EnvNCBIAPIKey       = "NCBI_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvOpenAIModel      = "URL2REF_LLM_MODEL"
	EnvScrapeInterval   = "URL2REF_SCRAPE_INTERVAL"
	EnvDocumentInterval = "URL2REF_PDF_INTERVAL"
	EnvCrossrefMailto   = "URL2REF_CROSSREF_MAILTO"
)

// Default rate-limit intervals. Treated as configuration, not a
// contract; the only requirement is that they stay positive.
const (
	DefaultScrapeInterval   = 1 * time.Second
	DefaultDocumentInterval = 2 * time.Second
)

// Config holds pipeline configuration.
type Config struct {
	NCBIAPIKey       string        // E-utilities API key (optional, raises rate limit)
	OpenAIAPIKey     string        // LLM key; empty disables the text-reasoning fallback
	OpenAIModel      string        // LLM model override
	CrossrefMailto   string        // Contact address for the Crossref polite pool
	ScrapeInterval   time.Duration // Minimum delay between page fetches
	DocumentInterval time.Duration // Minimum delay between document fetches
}

// FromEnv builds a Config from the environment, falling back to
// defaults for anything unset. Malformed durations are reported rather
// than silently defaulted.
func FromEnv() (*Config, error) {
	cfg := &Config{
		NCBIAPIKey:     os.Getenv(EnvNCBIAPIKey),
		OpenAIAPIKey:   os.Getenv(EnvOpenAIAPIKey),
		OpenAIModel:    os.Getenv(EnvOpenAIModel),
		CrossrefMailto: os.Getenv(EnvCrossrefMailto),
	}

	var err error
	if cfg.ScrapeInterval, err = intervalFromEnv(EnvScrapeInterval, DefaultScrapeInterval); err != nil {
		return nil, err
	}
	if cfg.DocumentInterval, err = intervalFromEnv(EnvDocumentInterval, DefaultDocumentInterval); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants. Rate-limit intervals
// must be positive: scraping without a minimum inter-request delay
// trips publisher anti-scraping defenses and starves results.
func (c *Config) Validate() error {
	if c.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape interval must be positive, got %v", c.ScrapeInterval)
	}
	if c.DocumentInterval <= 0 {
		return fmt.Errorf("document interval must be positive, got %v", c.DocumentInterval)
	}
	return nil
}

// intervalFromEnv parses a duration from the environment.
func intervalFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	return d, nil
}
