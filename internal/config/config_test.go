package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("Expected default API URL, got '%s'", cfg.APIURL)
	}
	if cfg.Country != "US" {
		t.Errorf("Expected default country US, got '%s'", cfg.Country)
	}
	if cfg.Engine != "api" {
		t.Errorf("Expected default engine api, got '%s'", cfg.Engine)
	}
	if cfg.MaxPages != 10 {
		t.Errorf("Expected default max pages 10, got %d", cfg.MaxPages)
	}
	if cfg.ResultsPerPage != 20 {
		t.Errorf("Expected default results per page 20, got %d", cfg.ResultsPerPage)
	}
	if cfg.HTTPTimeout != 120*time.Second {
		t.Errorf("Expected default timeout 120s, got %v", cfg.HTTPTimeout)
	}
	if cfg.OutputDir != "output" {
		t.Errorf("Expected default output dir 'output', got '%s'", cfg.OutputDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ZILLOW_SCRAPER_API_TOKEN", "env-token")
	t.Setenv("ZILLOW_SCRAPER_API_URL", "https://proxy.example.com/render")
	t.Setenv("ZILLOW_SCRAPER_MAX_PAGES", "3")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIToken != "env-token" {
		t.Errorf("Expected token from env, got '%s'", cfg.APIToken)
	}
	if cfg.APIURL != "https://proxy.example.com/render" {
		t.Errorf("Expected API URL from env, got '%s'", cfg.APIURL)
	}
	if cfg.MaxPages != 3 {
		t.Errorf("Expected max pages 3 from env, got %d", cfg.MaxPages)
	}
}

func TestLoad_FlagOverrides(t *testing.T) {
	t.Setenv("ZILLOW_SCRAPER_API_TOKEN", "env-token")

	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.PersistentFlags().Set("token", "flag-token"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}
	if err := cmd.PersistentFlags().Set("timeout", "30s"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}
	if err := cmd.PersistentFlags().Set("verbose", "true"); err != nil {
		t.Fatalf("Failed to set flag: %v", err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Flag beats env
	if cfg.APIToken != "flag-token" {
		t.Errorf("Expected token from flag, got '%s'", cfg.APIToken)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s from flag, got %v", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected verbose flag to set debug level, got '%s'", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			HTTPTimeout:       time.Minute,
			Engine:            "api",
			MaxPages:          10,
			ResultsPerPage:    20,
			CacheMaxSizeBytes: 1024,
		}
	}

	if err := validate(base()); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"bad engine", func(c *Config) { c.Engine = "carrier-pigeon" }},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }},
		{"zero results per page", func(c *Config) { c.ResultsPerPage = 0 }},
		{"zero cache size", func(c *Config) { c.CacheMaxSizeBytes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := validate(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
