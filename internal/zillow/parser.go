// Package zillow extracts structured rental listings from the page-state JSON
// embedded in Zillow search-result pages.
package zillow

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// searchResultPaths are the known locations of the searchResults object
// inside the __NEXT_DATA__ tree, in preference order. Zillow has moved this
// object between page builds; all but the primary path must contain a
// listResults key to be accepted.
var searchResultPaths = [][]string{
	{"props", "pageProps", "searchPageState", "cat1", "searchResults"},
	{"props", "pageProps", "searchPageState", "searchResults"},
	{"props", "pageProps", "componentProps", "searchResults"},
	{"props", "initialReduxState", "searchPageState", "cat1", "searchResults"},
}

// PaginationInfo describes where a page sits in the full result set
type PaginationInfo struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalResults int `json:"total_results"`
}

// Parser extracts listings from a single rendered search-result page
type Parser struct {
	doc *goquery.Document
	url string
}

// NewParser parses the page HTML
func NewParser(html string) (*Parser, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Parser{doc: doc}, nil
}

// NewParserForURL parses the page HTML and records the page URL, which the
// script-VM fallback uses to shim window.location.
func NewParserForURL(html, url string) (*Parser, error) {
	p, err := NewParser(html)
	if err != nil {
		return nil, err
	}
	p.url = url
	return p, nil
}

// ParseListings is a convenience wrapper: parse the HTML and return its listings
func ParseListings(html string) ([]Listing, error) {
	p, err := NewParser(html)
	if err != nil {
		return nil, err
	}
	return p.Listings()
}

// NextData returns the decoded __NEXT_DATA__ JSON tree. When the script tag
// is absent it falls back to executing the page's inline scripts and
// harvesting state globals.
func (p *Parser) NextData() (map[string]any, error) {
	sel := p.doc.Find(`script#__NEXT_DATA__[type="application/json"]`)
	if sel.Length() == 0 {
		sel = p.doc.Find("script#__NEXT_DATA__")
	}

	if sel.Length() > 0 {
		var root map[string]any
		if err := json.Unmarshal([]byte(sel.First().Text()), &root); err != nil {
			return nil, fmt.Errorf("failed to decode __NEXT_DATA__: %w", err)
		}
		return root, nil
	}

	log.Debug().Msg("__NEXT_DATA__ tag not found, trying inline-script globals")
	if root, ok := stateFromScripts(p.doc, p.url); ok {
		return root, nil
	}

	return nil, fmt.Errorf("page contains no __NEXT_DATA__ state")
}

// SearchResults walks the known paths through the page state and returns the
// searchResults object.
func (p *Parser) SearchResults() (map[string]any, error) {
	root, err := p.NextData()
	if err != nil {
		return nil, err
	}

	results, ok := findSearchResults(root)
	if !ok {
		return nil, fmt.Errorf("no search results found in page state")
	}
	return results, nil
}

// findSearchResults tries each known path. The primary path is accepted when
// non-empty; alternates must carry listResults.
func findSearchResults(root map[string]any) (map[string]any, bool) {
	for i, path := range searchResultPaths {
		node := dig(root, path...)
		if node == nil || len(node) == 0 {
			continue
		}
		if i > 0 {
			if _, hasList := node["listResults"]; !hasList {
				continue
			}
			log.Debug().Str("path", strings.Join(path, ".")).Msg("Search results found at alternate path")
		}
		return node, true
	}
	return nil, false
}

// dig walks nested maps by key, returning nil when any hop is missing
func dig(m map[string]any, path ...string) map[string]any {
	current := m
	for _, key := range path {
		current = asMap(current[key])
		if current == nil {
			return nil
		}
	}
	return current
}

// Listings returns all listings on the page. The listing array is read from
// listResults, falling back to results and then mapResults.
func (p *Parser) Listings() ([]Listing, error) {
	results, err := p.SearchResults()
	if err != nil {
		return nil, err
	}

	raw := asSlice(results["listResults"])
	if len(raw) == 0 {
		raw = asSlice(results["results"])
	}
	if len(raw) == 0 {
		raw = asSlice(results["mapResults"])
	}

	listings := make([]Listing, 0, len(raw))
	skipped := 0
	for _, entry := range raw {
		m := asMap(entry)
		if m == nil {
			skipped++
			continue
		}
		listing, ok := parseListing(m)
		if !ok {
			skipped++
			continue
		}
		listings = append(listings, listing)
	}

	log.Debug().
		Int("parsed", len(listings)).
		Int("skipped", skipped).
		Msg("Parsed listings from page state")

	return listings, nil
}

// Pagination extracts result-count and page-position info. resultsPerPage
// is the site's fixed page size (20 for Zillow search).
func (p *Parser) Pagination(resultsPerPage int) PaginationInfo {
	info := PaginationInfo{CurrentPage: 1}
	if resultsPerPage <= 0 {
		resultsPerPage = 20
	}

	results, err := p.SearchResults()
	if err != nil {
		return info
	}

	total := asFloat(results["totalResultCount"])
	if total == 0 {
		total = asFloat(results["totalResults"])
	}
	if total == 0 {
		total = asFloat(results["resultCount"])
	}
	info.TotalResults = int(total)
	info.TotalPages = int(math.Ceil(total / float64(resultsPerPage)))

	pagination := dig(results, "searchList", "pagination")
	if pagination == nil {
		pagination = asMap(results["pagination"])
	}
	if pagination != nil {
		if current := int(asFloat(pagination["currentPage"])); current > 0 {
			info.CurrentPage = current
		}
	}

	return info
}

// HasNextPage reports whether the page links to a following results page.
// Zillow renders an a[rel=next] element that is aria-disabled on the last page.
func (p *Parser) HasNextPage() bool {
	next := p.doc.Find(`a[rel="next"]`).First()
	if next.Length() == 0 {
		return false
	}
	return next.AttrOr("aria-disabled", "") != "true"
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
