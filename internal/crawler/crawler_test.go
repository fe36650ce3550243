package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

// fakeEngine serves canned pages in call order
type fakeEngine struct {
	pages []*models.Page
	errs  []error
	calls []models.RequestOptions
}

func (f *fakeEngine) Name() string { return "FakeEngine" }

func (f *fakeEngine) Render(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	i := len(f.calls)
	f.calls = append(f.calls, opts)
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.pages) {
		return nil, fmt.Errorf("unexpected call %d", i)
	}
	page := f.pages[i]
	page.URL = opts.URL
	return page, nil
}

// resultPage builds a search-result page with n listings and, optionally, an
// enabled next-page link
func resultPage(t *testing.T, n int, hasNext bool) *models.Page {
	t.Helper()

	listings := make([]any, n)
	for i := range listings {
		listings[i] = map[string]any{
			"zpid":             fmt.Sprintf("%d", 1000+i),
			"price":            "$1,500/mo",
			"unformattedPrice": 1500,
		}
	}
	state := map[string]any{
		"props": map[string]any{
			"pageProps": map[string]any{
				"searchPageState": map[string]any{
					"cat1": map[string]any{
						"searchResults": map[string]any{
							"listResults":      listings,
							"totalResultCount": 45,
						},
					},
				},
			},
		},
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}

	next := ""
	if hasNext {
		next = `<a rel="next" href="#">Next</a>`
	}
	html := fmt.Sprintf(`<html><body>
	<script id="__NEXT_DATA__" type="application/json">%s</script>
	%s
	</body></html>`, data, next)

	return &models.Page{StatusCode: 200, HTML: html}
}

const searchURL = "https://www.zillow.com/denver-co/rentals/?searchQueryState=%7B%7D"

func TestCrawler_Run_MultiplePages(t *testing.T) {
	engine := &fakeEngine{
		pages: []*models.Page{
			resultPage(t, 20, true),
			resultPage(t, 20, true),
			resultPage(t, 5, false),
		},
	}

	c := New(engine, Options{MaxPages: 10, ResultsPerPage: 20})
	result, err := c.Run(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Pages) != 3 {
		t.Errorf("Expected 3 pages fetched, got %d", len(result.Pages))
	}
	if len(result.Listings) != 45 {
		t.Errorf("Expected 45 listings, got %d", len(result.Listings))
	}
	if len(result.Summaries) != 3 {
		t.Errorf("Expected 3 page summaries, got %d", len(result.Summaries))
	}
	if result.Summaries[2].Listings != 5 {
		t.Errorf("Expected 5 listings on last page, got %d", result.Summaries[2].Listings)
	}
	if result.Pagination.TotalResults != 45 || result.Pagination.TotalPages != 3 {
		t.Errorf("Unexpected pagination info: %+v", result.Pagination)
	}

	// Page 1 uses the base URL, later pages the rewritten one
	if engine.calls[0].URL != searchURL {
		t.Errorf("Page 1 must use the base URL, got '%s'", engine.calls[0].URL)
	}
	u, _ := url.Parse(engine.calls[1].URL)
	if !strings.Contains(u.Path, "2_p") {
		t.Errorf("Page 2 URL missing page segment: '%s'", engine.calls[1].URL)
	}
	if !strings.Contains(u.Query().Get("searchQueryState"), `"currentPage":2`) {
		t.Errorf("Page 2 state missing currentPage: '%s'", u.Query().Get("searchQueryState"))
	}
}

func TestCrawler_Run_TagsListingsWithPage(t *testing.T) {
	engine := &fakeEngine{
		pages: []*models.Page{
			resultPage(t, 2, true),
			resultPage(t, 2, false),
		},
	}

	c := New(engine, Options{MaxPages: 5})
	result, err := c.Run(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Listings[0].PageNumber != 1 {
		t.Errorf("Expected first listing tagged page 1, got %d", result.Listings[0].PageNumber)
	}
	if result.Listings[3].PageNumber != 2 {
		t.Errorf("Expected last listing tagged page 2, got %d", result.Listings[3].PageNumber)
	}
	if result.Listings[3].PageURL != engine.calls[1].URL {
		t.Errorf("Listing page URL does not match fetched URL: '%s'", result.Listings[3].PageURL)
	}
}

func TestCrawler_Run_StopsAtMaxPages(t *testing.T) {
	engine := &fakeEngine{
		pages: []*models.Page{
			resultPage(t, 20, true),
			resultPage(t, 20, true),
		},
	}

	c := New(engine, Options{MaxPages: 2})
	result, err := c.Run(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Pages) != 2 {
		t.Errorf("Expected crawl capped at 2 pages, got %d", len(result.Pages))
	}
	if len(engine.calls) != 2 {
		t.Errorf("Expected exactly 2 engine calls, got %d", len(engine.calls))
	}
}

func TestCrawler_Run_FirstPageFailure(t *testing.T) {
	engine := &fakeEngine{
		errs: []error{fmt.Errorf("proxy unreachable")},
	}

	c := New(engine, Options{MaxPages: 5})
	_, err := c.Run(context.Background(), searchURL)
	if err == nil {
		t.Error("Expected error when the first page cannot be fetched")
	}
}

func TestCrawler_Run_MidCrawlFailureKeepsResults(t *testing.T) {
	engine := &fakeEngine{
		pages: []*models.Page{resultPage(t, 20, true), nil},
		errs:  []error{nil, fmt.Errorf("render timeout")},
	}

	c := New(engine, Options{MaxPages: 5})
	result, err := c.Run(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("Mid-crawl failure must not surface as error, got: %v", err)
	}
	if len(result.Listings) != 20 {
		t.Errorf("Expected the 20 listings from page 1 kept, got %d", len(result.Listings))
	}
}

func TestCrawler_Run_EmptyHTMLStops(t *testing.T) {
	engine := &fakeEngine{
		pages: []*models.Page{
			resultPage(t, 20, true),
			{StatusCode: 200, HTML: ""},
		},
	}

	c := New(engine, Options{MaxPages: 5})
	result, err := c.Run(context.Background(), searchURL)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Listings) != 20 {
		t.Errorf("Expected 20 listings before the empty page, got %d", len(result.Listings))
	}
	if len(engine.calls) != 2 {
		t.Errorf("Expected crawl stopped after empty page, got %d calls", len(engine.calls))
	}
}

func TestCrawler_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := &fakeEngine{pages: []*models.Page{resultPage(t, 20, true)}}
	c := New(engine, Options{MaxPages: 5})

	_, err := c.Run(ctx, searchURL)
	if err == nil {
		t.Error("Expected context cancellation error")
	}
	if len(engine.calls) != 0 {
		t.Errorf("Expected no engine calls after cancellation, got %d", len(engine.calls))
	}
}
