package cache

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

func testPage(url string) *models.Page {
	return &models.Page{
		URL:        url,
		StatusCode: 200,
		HTML:       "<html><body>" + url + "</body></html>",
		FetchedAt:  time.Now(),
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	page := testPage("https://example.com/1")
	if err := c.Set(page.URL, page, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := c.Get(page.URL)
	if !ok {
		t.Fatal("Expected cache hit")
	}
	if got.URL != page.URL || got.HTML != page.HTML {
		t.Errorf("Cached page does not match: %+v", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	if _, ok := c.Get("https://example.com/missing"); ok {
		t.Error("Expected cache miss for unknown key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	page := testPage("https://example.com/ttl")
	if err := c.Set(page.URL, page, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(page.URL); ok {
		t.Error("Expected expired entry to miss")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	// Each entry is ~1KB of HTML plus overhead; cap the cache so only a few fit
	c := NewMemoryCache(4 * 1024)
	defer c.Close()

	big := strings.Repeat("x", 1024)
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		page := testPage(url)
		page.HTML = big
		if err := c.Set(url, page, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	// The oldest entries must have been evicted to stay under the byte cap
	if _, ok := c.Get("https://example.com/0"); ok {
		t.Error("Expected oldest entry evicted")
	}
	if _, ok := c.Get("https://example.com/4"); !ok {
		t.Error("Expected newest entry retained")
	}
}

func TestMemoryCache_GetRefreshesLRU(t *testing.T) {
	c := NewMemoryCache(4 * 1024)
	defer c.Close()

	big := strings.Repeat("x", 1024)
	for i := 0; i < 2; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		page := testPage(url)
		page.HTML = big
		c.Set(url, page, time.Minute)
	}

	// Touch entry 0 so entry 1 becomes the eviction candidate
	c.Get("https://example.com/0")

	next := testPage("https://example.com/2")
	next.HTML = big
	c.Set(next.URL, next, time.Minute)

	if _, ok := c.Get("https://example.com/0"); !ok {
		t.Error("Expected recently used entry retained")
	}
	if _, ok := c.Get("https://example.com/1"); ok {
		t.Error("Expected least recently used entry evicted")
	}
}

func TestMemoryCache_UpdateInPlace(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	url := "https://example.com/page"
	c.Set(url, testPage(url), time.Minute)

	updated := testPage(url)
	updated.HTML = "<html>v2</html>"
	c.Set(url, updated, time.Minute)

	got, ok := c.Get(url)
	if !ok {
		t.Fatal("Expected cache hit after update")
	}
	if got.HTML != "<html>v2</html>" {
		t.Errorf("Expected updated HTML, got '%s'", got.HTML)
	}
}

func TestMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	c.Set("a", testPage("a"), time.Minute)
	c.Set("b", testPage("b"), time.Minute)

	if err := c.Delete("a"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected deleted entry to miss")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Expected cleared cache to miss")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	c := NewMemoryCache(1024 * 1024)
	defer c.Close()

	c.Set("a", testPage("a"), time.Minute)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	hits, misses := c.Stats()
	if hits != 2 {
		t.Errorf("Expected 2 hits, got %d", hits)
	}
	if misses != 1 {
		t.Errorf("Expected 1 miss, got %d", misses)
	}
}
