package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Rendering API
	APIURL   string
	APIToken string
	Country  string
	Render   bool

	// Engine selection: "api" (hosted rendering proxy) or "local" (headless Chrome)
	Engine string

	// HTTP
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string

	// Crawl
	MaxPages       int
	ResultsPerPage int

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Local browser
	ChromePath      string
	BrowserHeadless bool
	WaitSeconds     int

	// Caching
	CacheTTL          time.Duration
	CacheMaxSizeBytes int64

	// Export
	OutputDir string
}

// Load builds a Config by combining defaults, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		APIURL:            DefaultAPIURL,
		Country:           DefaultCountry,
		Render:            DefaultRender,
		Engine:            DefaultEngine,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		MaxPages:          DefaultMaxPages,
		ResultsPerPage:    DefaultResultsPerPage,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		BrowserHeadless:   DefaultBrowserHeadless,
		WaitSeconds:       DefaultWaitSeconds,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		OutputDir:         DefaultOutputDir,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("ZILLOW_SCRAPER_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("ZILLOW_SCRAPER_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("ZILLOW_SCRAPER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("ZILLOW_SCRAPER_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("ZILLOW_SCRAPER_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("ZILLOW_SCRAPER_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPages = n
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("user-agent"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.UserAgent = s
			}
		}
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("token"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.APIToken = s
			}
		}
		if f := cmd.Flags().Lookup("api-url"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.APIURL = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("json"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
		if f := cmd.Flags().Lookup("quiet"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "error"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
