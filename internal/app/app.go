// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/cache"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/config"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/credentials"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ratelimit"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/render"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/render/api"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/render/local"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       cache.Cache
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	APIEngine   *api.Client
	LocalEngine *local.Engine
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies:
// logger, page cache, rate limiter, HTTP client, and both rendering engines.
// The API token is resolved from config (flag or env) and falls back to the
// keyring.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logLevel := zerolog.ErrorLevel
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		logWriter = os.Stderr
	} else {
		logWriter = zerolog.NewConsoleWriter()
	}
	logger := log.Output(logWriter).With().Timestamp().Logger()

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Resolve the API token: flag/env beats keyring
	if cfg.APIToken == "" {
		token, err := credentials.LoadToken()
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to load API token from keyring")
		} else {
			cfg.APIToken = token
		}
	}

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	logger.Debug().
		Int64("max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Page cache initialized")

	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	apiEngine := api.New(api.Options{
		APIURL:   cfg.APIURL,
		Token:    cfg.APIToken,
		Client:   httpClient,
		Cache:    memCache,
		Limiter:  rateLimiter,
		CacheTTL: cfg.CacheTTL,
	})

	localEngine := local.New(local.Options{
		Cache:      memCache,
		Limiter:    rateLimiter,
		ChromePath: cfg.ChromePath,
		Headless:   cfg.BrowserHeadless,
		UserAgent:  cfg.UserAgent,
		CacheTTL:   cfg.CacheTTL,
	})

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		APIEngine:   apiEngine,
		LocalEngine: localEngine,
		startTime:   time.Now(),
	}

	logger.Debug().Msg("Application initialized")
	return app, nil
}

// Engine returns the rendering engine selected by config
func (a *Application) Engine() render.Engine {
	if a.Config.Engine == "local" {
		return a.LocalEngine
	}
	return a.APIEngine
}

// Close gracefully shuts down the application and all its resources
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Debug().
		Dur("uptime", time.Since(a.startTime)).
		Msg("Shutting down application")

	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	return nil
}
