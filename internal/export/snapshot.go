package export

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

// WriteHTML saves the raw rendered HTML of a page
func WriteHTML(page *models.Page, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(page.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Info().Str("file", path).Int("bytes", len(page.HTML)).Msg("HTML snapshot saved")
	return nil
}

// WriteMarkdown converts the rendered page to Markdown and saves it.
// Scripts, styles, and non-content attributes are stripped first.
func WriteMarkdown(page *models.Page, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	// Resolve relative links against the page URL
	converter.AddRules(md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			href, exists := selec.Attr("href")
			if !exists {
				return nil
			}
			resolved := resolveURL(page.URL, href)
			str := fmt.Sprintf("[%s](%s)", selec.Text(), resolved)
			return &str
		},
	})

	cleaned, err := cleanHTML(page.HTML)
	if err != nil {
		return err
	}

	mdStr, err := converter.ConvertString(cleaned)
	if err != nil {
		return fmt.Errorf("failed to convert to markdown: %w", err)
	}

	if err := os.WriteFile(path, []byte(mdStr), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("file", path).Msg("Markdown snapshot saved")
	return nil
}

// cleanHTML removes unwanted elements and attributes so the Markdown
// converter sees only page content
func cleanHTML(htmlContent string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, link, meta, noscript, iframe, svg, form, input, button, select, textarea, canvas").Remove()

	doc.Find("*").Each(func(i int, s *goquery.Selection) {
		if len(s.Nodes) == 0 {
			return
		}
		node := s.Nodes[0]
		var kept []html.Attribute
		for _, attr := range node.Attr {
			switch node.Data {
			case "a":
				if attr.Key == "href" || attr.Key == "title" {
					kept = append(kept, attr)
				}
			case "img":
				if attr.Key == "src" || attr.Key == "alt" {
					kept = append(kept, attr)
				}
			}
		}
		node.Attr = kept
	})

	htmlStr, err := doc.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(htmlStr), nil
}

// resolveURL resolves a possibly-relative href against a base URL
func resolveURL(base, href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if u.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(u).String()
}
