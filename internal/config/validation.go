package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.Engine != "api" && c.Engine != "local" {
		return fmt.Errorf("engine must be api or local, got %q", c.Engine)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be > 0")
	}
	if c.ResultsPerPage <= 0 {
		return fmt.Errorf("results per page must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	return nil
}
