package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	page := &models.Page{
		URL:  "https://www.zillow.com/denver-co/rentals/",
		HTML: "<html><body><h1>Rentals</h1></body></html>",
	}

	if err := WriteHTML(page, path); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(data) != page.HTML {
		t.Errorf("Snapshot does not match page HTML")
	}
}

func TestWriteMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.md")
	page := &models.Page{
		URL: "https://www.zillow.com/denver-co/rentals/",
		HTML: `<html>
<head><style>body { color: red; }</style><script>trackPageView();</script></head>
<body>
	<h1>Denver Rentals</h1>
	<p class="intro" data-testid="intro">57 results</p>
	<a href="/homedetails/123_zpid/" class="card-link">123 Main St</a>
	<script>moreTracking();</script>
</body>
</html>`,
	}

	if err := WriteMarkdown(page, path); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	md := string(data)

	if !strings.Contains(md, "# Denver Rentals") {
		t.Errorf("Expected heading in Markdown, got:\n%s", md)
	}
	if strings.Contains(md, "trackPageView") || strings.Contains(md, "color: red") {
		t.Errorf("Scripts/styles leaked into Markdown:\n%s", md)
	}
	// Relative hrefs resolve against the page URL
	if !strings.Contains(md, "https://www.zillow.com/homedetails/123_zpid/") {
		t.Errorf("Expected resolved detail link in Markdown, got:\n%s", md)
	}
}

func TestCleanHTML_StripsAttributes(t *testing.T) {
	cleaned, err := cleanHTML(`<div class="wrapper" id="main" data-zpid="1">
		<a href="/x" class="link" onclick="track()">link</a>
		<img src="/img.jpg" alt="photo" loading="lazy">
	</div>`)
	if err != nil {
		t.Fatalf("cleanHTML failed: %v", err)
	}

	if strings.Contains(cleaned, "class=") || strings.Contains(cleaned, "onclick=") || strings.Contains(cleaned, "loading=") {
		t.Errorf("Non-content attributes not stripped:\n%s", cleaned)
	}
	if !strings.Contains(cleaned, `href="/x"`) {
		t.Errorf("href attribute must survive cleaning:\n%s", cleaned)
	}
	if !strings.Contains(cleaned, `src="/img.jpg"`) || !strings.Contains(cleaned, `alt="photo"`) {
		t.Errorf("img src/alt must survive cleaning:\n%s", cleaned)
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://www.zillow.com/denver-co/rentals/", "/homedetails/1_zpid/", "https://www.zillow.com/homedetails/1_zpid/"},
		{"https://www.zillow.com/denver-co/rentals/", "https://other.com/x", "https://other.com/x"},
		{"https://www.zillow.com/a/b/", "c", "https://www.zillow.com/a/b/c"},
	}
	for _, tc := range cases {
		if got := resolveURL(tc.base, tc.href); got != tc.want {
			t.Errorf("resolveURL(%q, %q) = %q, want %q", tc.base, tc.href, got, tc.want)
		}
	}
}
