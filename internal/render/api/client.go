// Package api implements the rendering engine backed by a hosted rendering
// proxy (Nimble realtime web API). Each Render call is a single POST that
// returns the JavaScript-rendered HTML of the target page.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/cache"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ratelimit"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/retry"
	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
	"github.com/rs/zerolog/log"
)

// htmlKeys is the ordered list of response fields that may carry the rendered
// HTML. The proxy has renamed this field across API versions, so every known
// alias is tried in order.
var htmlKeys = []string{"html_content", "rendered_html", "browser_html", "html"}

// request is the JSON payload sent to the rendering proxy
type request struct {
	URL     string `json:"url"`
	Render  bool   `json:"render"`
	Country string `json:"country,omitempty"`
}

// Client implements render.Engine against the hosted proxy
type Client struct {
	apiURL   string
	token    string
	client   *http.Client
	cache    cache.Cache
	limiter  ratelimit.RateLimiter
	cacheTTL time.Duration
	retryCfg retry.Config
}

// Options configures a proxy API client
type Options struct {
	APIURL   string
	Token    string
	Client   *http.Client
	Cache    cache.Cache
	Limiter  ratelimit.RateLimiter
	CacheTTL time.Duration
	Retry    *retry.Config
}

// New creates a proxy API client with dependency injection
func New(opts Options) *Client {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	retryCfg := retry.DefaultConfig()
	if opts.Retry != nil {
		retryCfg = *opts.Retry
	}
	return &Client{
		apiURL:   opts.APIURL,
		token:    opts.Token,
		client:   client,
		cache:    opts.Cache,
		limiter:  opts.Limiter,
		cacheTTL: opts.CacheTTL,
		retryCfg: retryCfg,
	}
}

// Name returns the name of this engine
func (c *Client) Name() string {
	return "APIEngine"
}

// Render posts the target URL to the proxy and extracts the rendered HTML
func (c *Client) Render(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	if c.token == "" {
		return nil, fmt.Errorf("rendering API token is not configured (run `zillow-scraper token set` or pass --token)")
	}

	if c.cache != nil {
		if page, ok := c.cache.Get(opts.URL); ok {
			return page, nil
		}
	}

	if c.limiter != nil {
		// Throttle on the proxy endpoint, not the target host: every call
		// lands on the same API server.
		if err := c.limiter.Wait(ctx, c.apiURL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()

	var page *models.Page
	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		var err error
		page, err = c.renderOnce(ctx, opts)
		return err
	})
	if err != nil {
		return nil, err
	}

	page.ResponseTime = time.Since(start).Milliseconds()

	if c.cache != nil {
		if err := c.cache.Set(opts.URL, page, c.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache rendered page")
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", page.StatusCode).
		Int64("response_time_ms", page.ResponseTime).
		Int("html_bytes", len(page.HTML)).
		Msg("Page rendered via proxy")

	return page, nil
}

func (c *Client) renderOnce(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	payload := request{
		URL:     opts.URL,
		Render:  opts.Render,
		Country: opts.Country,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read proxy response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if len(msg) > 500 {
			msg = msg[:500]
		}
		return nil, retry.NewHTTPError(resp.StatusCode, resp.Status, msg)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode proxy response: %w", err)
	}

	html, ok := extractHTML(envelope)
	if !ok {
		return nil, fmt.Errorf("proxy response for %s contains no rendered HTML", opts.URL)
	}

	page := &models.Page{
		URL:        opts.URL,
		StatusCode: resp.StatusCode,
		HTML:       html,
		Engine:     c.Name(),
		FetchedAt:  time.Now(),
	}

	if status, ok := envelope["status"]; ok {
		var s string
		if json.Unmarshal(status, &s) == nil {
			log.Debug().Str("api_status", s).Msg("Proxy reported status")
		}
	}

	return page, nil
}

// extractHTML returns the rendered HTML from the first known response field
// that is present and non-empty
func extractHTML(envelope map[string]json.RawMessage) (string, bool) {
	for _, key := range htmlKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var html string
		if err := json.Unmarshal(raw, &html); err != nil {
			continue
		}
		if html != "" {
			return html, true
		}
	}
	return "", false
}
