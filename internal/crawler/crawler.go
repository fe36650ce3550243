// Package crawler drives the paginated scrape: render page 1..N, parse each
// as it arrives, and stop when the site reports no further pages.
package crawler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/render"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/zillow"
	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

// Options configures a crawl
type Options struct {
	MaxPages       int
	ResultsPerPage int
	Country        string
	Render         bool
	WaitSeconds    int
	Timeout        time.Duration
	Proxy          string
	ShowProgress   bool
}

// Result is everything one crawl produced
type Result struct {
	Pages      []*models.Page
	Listings   []zillow.Listing
	Summaries  []zillow.PageSummary
	Pagination zillow.PaginationInfo
}

// Crawler fetches consecutive search-result pages through a rendering engine
type Crawler struct {
	engine render.Engine
	opts   Options
}

// New creates a Crawler
func New(engine render.Engine, opts Options) *Crawler {
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10
	}
	if opts.ResultsPerPage <= 0 {
		opts.ResultsPerPage = 20
	}
	return &Crawler{engine: engine, opts: opts}
}

// Run crawls up to MaxPages result pages starting from baseURL.
//
// The loop is sequential: each page must be rendered before the next-page
// check can run. A failed fetch ends the crawl but keeps everything scraped
// so far; the error is only returned when not even the first page succeeded.
func (c *Crawler) Run(ctx context.Context, baseURL string) (*Result, error) {
	result := &Result{}

	var bar *progressbar.ProgressBar
	if c.opts.ShowProgress {
		bar = progressbar.NewOptions(c.opts.MaxPages,
			progressbar.OptionSetDescription("Scraping pages"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	for pageNum := 1; pageNum <= c.opts.MaxPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		pageURL := baseURL
		if pageNum > 1 {
			rewritten, err := zillow.PageURL(baseURL, pageNum)
			if err != nil {
				log.Warn().Err(err).Int("page", pageNum).Msg("Failed to build page URL, stopping")
				break
			}
			pageURL = rewritten
		}

		log.Info().Int("page", pageNum).Str("url", truncate(pageURL, 100)).Msg("Fetching page")

		page, err := c.engine.Render(ctx, models.RequestOptions{
			URL:         pageURL,
			Render:      c.opts.Render,
			Country:     c.opts.Country,
			Timeout:     c.opts.Timeout,
			WaitSeconds: c.opts.WaitSeconds,
			Proxy:       c.opts.Proxy,
		})
		if err != nil {
			if pageNum == 1 {
				return result, fmt.Errorf("failed to fetch first page: %w", err)
			}
			log.Warn().Err(err).Int("page", pageNum).Msg("Page fetch failed, stopping crawl")
			break
		}

		page.PageNumber = pageNum
		result.Pages = append(result.Pages, page)

		if page.HTML == "" {
			log.Warn().Int("page", pageNum).Msg("Page has no HTML content, stopping crawl")
			break
		}

		parser, err := zillow.NewParserForURL(page.HTML, pageURL)
		if err != nil {
			log.Warn().Err(err).Int("page", pageNum).Msg("Failed to parse page, stopping crawl")
			break
		}

		listings, err := parser.Listings()
		if err != nil {
			log.Warn().Err(err).Int("page", pageNum).Msg("No listings extracted from page")
		}
		for i := range listings {
			listings[i].PageNumber = pageNum
			listings[i].PageURL = pageURL
		}
		result.Listings = append(result.Listings, listings...)
		result.Summaries = append(result.Summaries, zillow.PageSummary{
			Page:     pageNum,
			URL:      pageURL,
			Listings: len(listings),
		})

		if pageNum == 1 {
			result.Pagination = parser.Pagination(c.opts.ResultsPerPage)
		}

		if bar != nil {
			_ = bar.Add(1)
		}

		log.Info().
			Int("page", pageNum).
			Int("listings", len(listings)).
			Int("total", len(result.Listings)).
			Msg("Page parsed")

		if !parser.HasNextPage() {
			log.Info().Int("pages", pageNum).Msg("No further pages available")
			break
		}
	}

	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
