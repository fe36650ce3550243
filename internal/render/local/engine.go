// Package local implements a rendering engine on headless Chrome via
// chromedp. It exists for runs without a rendering-proxy token; Zillow's
// anti-bot layer makes it less reliable than the hosted proxy.
package local

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/cache"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ratelimit"
	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

// Engine renders pages with headless Chrome
type Engine struct {
	cache      cache.Cache
	limiter    ratelimit.RateLimiter
	chromePath string
	headless   bool
	userAgent  string
	cacheTTL   time.Duration
}

// Options configures the local rendering engine
type Options struct {
	Cache      cache.Cache
	Limiter    ratelimit.RateLimiter
	ChromePath string
	Headless   bool
	UserAgent  string
	CacheTTL   time.Duration
}

// New creates a local rendering engine
func New(opts Options) *Engine {
	chromePath := opts.ChromePath
	if chromePath == "" {
		chromePath = FindChrome()
	}
	return &Engine{
		cache:      opts.Cache,
		limiter:    opts.Limiter,
		chromePath: chromePath,
		headless:   opts.Headless,
		userAgent:  opts.UserAgent,
		cacheTTL:   opts.CacheTTL,
	}
}

// Name returns the name of this engine
func (e *Engine) Name() string {
	return "LocalEngine"
}

// Render navigates headless Chrome to the URL and captures the rendered HTML
func (e *Engine) Render(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if e.cache != nil {
		if page, ok := e.cache.Get(opts.URL); ok {
			return page, nil
		}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, opts.URL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", e.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.UserAgent(e.userAgent),
	}
	if e.chromePath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(e.chromePath)}, allocOpts...)
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var statusCode int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Response.URL == opts.URL {
				statusCode = resp.Response.Status
			}
		}
	})

	var htmlContent string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(opts.URL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Let the SPA hydrate before capturing the DOM
			wait := time.Duration(opts.WaitSeconds) * time.Second
			if wait == 0 {
				wait = 300 * time.Millisecond
			}
			select {
			case <-time.After(wait):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp execution failed: %w", err)
	}

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   int(statusCode),
		HTML:         htmlContent,
		Engine:       e.Name(),
		FetchedAt:    time.Now(),
		ResponseTime: time.Since(start).Milliseconds(),
	}

	if e.cache != nil {
		if err := e.cache.Set(opts.URL, page, e.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache rendered page")
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", page.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Msg("Page rendered via headless Chrome")

	return page, nil
}
