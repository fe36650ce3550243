package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/crawler"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/export"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ui"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/zillow"
)

var (
	scrapeMaxPages  int
	scrapeOutDir    string
	scrapeEngine    string
	scrapeCountry   string
	scrapeFormat    string
	scrapeSaveHTML  bool
	scrapeSaveMD    bool
	scrapePrefix    string
	scrapeWaitSecs  int
	scrapeNoProgress bool
)

// scrapeCmd runs the full pipeline: paginated fetch, parse, stats, export
var scrapeCmd = &cobra.Command{
	Use:   "scrape <search-url>",
	Short: "Scrape all pages of a Zillow rental search and export the listings",
	Long: `Fetches up to --max-pages search-result pages, following Zillow's
searchQueryState pagination, extracts the listings embedded in each page's
state JSON, and writes JSON/CSV exports plus summary statistics.`,
	Example: `  # Scrape a Denver rental search (URL quoted because of the JSON query param)
  zillow-scraper scrape 'https://www.zillow.com/denver-co/rentals/?searchQueryState=...'

  # Limit to 3 pages and keep raw HTML snapshots
  zillow-scraper scrape --max-pages=3 --save-html '<url>'

  # Use local headless Chrome instead of the rendering API
  zillow-scraper scrape --engine=local '<url>'`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "Maximum number of pages to fetch (default 10)")
	scrapeCmd.Flags().StringVarP(&scrapeOutDir, "out", "o", "", "Output directory (default \"output\")")
	scrapeCmd.Flags().StringVar(&scrapeEngine, "engine", "", "Rendering engine: api or local (default api)")
	scrapeCmd.Flags().StringVar(&scrapeCountry, "country", "", "Proxy exit country (default US)")
	scrapeCmd.Flags().StringVarP(&scrapeFormat, "format", "f", "all", "Export format: json, csv, or all")
	scrapeCmd.Flags().BoolVar(&scrapeSaveHTML, "save-html", false, "Save raw HTML snapshots per page")
	scrapeCmd.Flags().BoolVar(&scrapeSaveMD, "save-markdown", false, "Save cleaned Markdown snapshots per page")
	scrapeCmd.Flags().StringVar(&scrapePrefix, "prefix", "zillow_rentals", "Filename prefix for exports")
	scrapeCmd.Flags().IntVar(&scrapeWaitSecs, "wait", 0, "Seconds to wait for the page to hydrate (default 5)")
	scrapeCmd.Flags().BoolVar(&scrapeNoProgress, "no-progress", false, "Disable the progress bar")
}

func runScrape(cmd *cobra.Command, args []string) error {
	searchURL := args[0]
	if !strings.HasPrefix(searchURL, "http://") && !strings.HasPrefix(searchURL, "https://") {
		return fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	a := GetApp()
	cfg := a.Config

	if scrapeMaxPages > 0 {
		cfg.MaxPages = scrapeMaxPages
	}
	if scrapeOutDir != "" {
		cfg.OutputDir = scrapeOutDir
	}
	if scrapeEngine != "" {
		if scrapeEngine != "api" && scrapeEngine != "local" {
			return fmt.Errorf("invalid engine: %s (must be api or local)", scrapeEngine)
		}
		cfg.Engine = scrapeEngine
	}
	if scrapeCountry != "" {
		cfg.Country = scrapeCountry
	}
	if scrapeWaitSecs > 0 {
		cfg.WaitSeconds = scrapeWaitSecs
	}

	switch scrapeFormat {
	case "json", "csv", "all":
	default:
		return fmt.Errorf("invalid format: %s (must be json, csv, or all)", scrapeFormat)
	}

	engine := a.Engine()
	log.Info().
		Str("engine", engine.Name()).
		Int("max_pages", cfg.MaxPages).
		Msg("Starting crawl")

	c := crawler.New(engine, crawler.Options{
		MaxPages:       cfg.MaxPages,
		ResultsPerPage: cfg.ResultsPerPage,
		Country:        cfg.Country,
		Render:         cfg.Render,
		WaitSeconds:    cfg.WaitSeconds,
		Timeout:        cfg.HTTPTimeout,
		Proxy:          cfg.Proxy,
		ShowProgress:   !scrapeNoProgress && !cfg.JSONLog && cfg.LogLevel != "debug",
	})

	result, err := c.Run(cmd.Context(), searchURL)
	if err != nil {
		return err
	}
	if len(result.Listings) == 0 {
		return fmt.Errorf("no listings found across %d fetched pages", len(result.Pages))
	}

	stats := zillow.Summarize(result.Listings, result.Summaries)

	// Export
	if scrapeFormat == "json" || scrapeFormat == "all" {
		path := filepath.Join(cfg.OutputDir, scrapePrefix+".json")
		if err := export.WriteListingsJSON(result.Listings, path); err != nil {
			return err
		}
		fmt.Printf("%s Saved %d listings to %s\n", ui.Success("✓"), len(result.Listings), path)
	}
	if scrapeFormat == "csv" || scrapeFormat == "all" {
		path := filepath.Join(cfg.OutputDir, scrapePrefix+".csv")
		if err := export.WriteListingsCSV(result.Listings, path); err != nil {
			return err
		}
		fmt.Printf("%s Saved %d listings to %s\n", ui.Success("✓"), len(result.Listings), path)
	}

	statsPath := filepath.Join(cfg.OutputDir, scrapePrefix+"_stats.json")
	if err := export.WriteStatsJSON(stats, result.Pagination, statsPath); err != nil {
		return err
	}
	fmt.Printf("%s Saved statistics to %s\n", ui.Success("✓"), statsPath)

	for _, page := range result.Pages {
		if scrapeSaveHTML {
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_page_%d.html", scrapePrefix, page.PageNumber))
			if err := export.WriteHTML(page, path); err != nil {
				return err
			}
		}
		if scrapeSaveMD {
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_page_%d.md", scrapePrefix, page.PageNumber))
			if err := export.WriteMarkdown(page, path); err != nil {
				return err
			}
		}
	}

	printSummary(result, stats)
	return nil
}

// printSummary prints a human-readable recap of the crawl
func printSummary(result *crawler.Result, stats zillow.Stats) {
	fmt.Printf("\n%s\n", ui.Bold("Scrape summary"))
	fmt.Printf("  Pages fetched:  %d\n", len(result.Pages))
	fmt.Printf("  Listings found: %d\n", stats.TotalListings)
	if result.Pagination.TotalResults > 0 {
		fmt.Printf("  Total results:  %d across %d pages\n",
			result.Pagination.TotalResults, result.Pagination.TotalPages)
	}
	if stats.Price != nil {
		fmt.Printf("  Price range:    $%.0f - $%.0f (avg $%.0f)\n",
			stats.Price.Min, stats.Price.Max, stats.Price.Average)
	}
	if stats.Beds != nil {
		fmt.Printf("  Bedrooms:       %.0f - %.0f (avg %.1f)\n",
			stats.Beds.Min, stats.Beds.Max, stats.Beds.Average)
	}

	// Show a few sample listings
	limit := 3
	if len(result.Listings) < limit {
		limit = len(result.Listings)
	}
	if limit > 0 {
		fmt.Printf("\n%s\n", ui.Bold("Sample listings"))
		for i := 0; i < limit; i++ {
			l := result.Listings[i]
			fmt.Printf("  %d. %s\n", i+1, l.FullAddress)
			fmt.Printf("     %s | %.0f bd | %.1f ba | %.0f sqft | page %d\n",
				l.Price, l.Bedrooms, l.Bathrooms, l.AreaSqft, l.PageNumber)
		}
	}
	fmt.Println()
}
