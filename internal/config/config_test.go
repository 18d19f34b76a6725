package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvScrapeInterval, "")
	t.Setenv(EnvDocumentInterval, "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ScrapeInterval != DefaultScrapeInterval {
		t.Errorf("ScrapeInterval = %v, want %v", cfg.ScrapeInterval, DefaultScrapeInterval)
	}
	if cfg.DocumentInterval != DefaultDocumentInterval {
		t.Errorf("DocumentInterval = %v, want %v", cfg.DocumentInterval, DefaultDocumentInterval)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvScrapeInterval, "250ms")
	t.Setenv(EnvDocumentInterval, "5s")
	t.Setenv(EnvNCBIAPIKey, "key123")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if cfg.ScrapeInterval != 250*time.Millisecond {
		t.Errorf("ScrapeInterval = %v, want 250ms", cfg.ScrapeInterval)
	}
	if cfg.DocumentInterval != 5*time.Second {
		t.Errorf("DocumentInterval = %v, want 5s", cfg.DocumentInterval)
	}
	if cfg.NCBIAPIKey != "key123" {
		t.Errorf("NCBIAPIKey = %q", cfg.NCBIAPIKey)
	}
}

func TestFromEnvMalformedInterval(t *testing.T) {
	t.Setenv(EnvScrapeInterval, "quickly")

	if _, err := FromEnv(); err == nil {
		t.Error("FromEnv() error = nil for malformed duration")
	}
}

func TestValidateRejectsNonPositiveIntervals(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero scrape", Config{ScrapeInterval: 0, DocumentInterval: time.Second}},
		{"negative scrape", Config{ScrapeInterval: -time.Second, DocumentInterval: time.Second}},
		{"zero document", Config{ScrapeInterval: time.Second, DocumentInterval: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate() error = nil, want positive-interval error")
			}
		})
	}
}
