package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/export"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ui"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/zillow"
)

var (
	parseOutDir string
	parseFormat string
	parsePrefix string
)

// parseCmd extracts listings from already-saved HTML files, without any
// network access. Useful for re-processing snapshots from earlier runs.
var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Extract listings from saved search-result HTML files",
	Example: `  # Re-parse snapshots from an earlier scrape
  zillow-scraper parse output/zillow_rentals_page_1.html output/zillow_rentals_page_2.html

  # Export parsed listings as CSV
  zillow-scraper parse --format=csv --out=reparsed page.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseOutDir, "out", "o", "", "Output directory (default: print only)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "all", "Export format: json, csv, or all")
	parseCmd.Flags().StringVar(&parsePrefix, "prefix", "parsed_listings", "Filename prefix for exports")
}

func runParse(cmd *cobra.Command, args []string) error {
	var all []zillow.Listing
	var summaries []zillow.PageSummary
	var pagination zillow.PaginationInfo

	cfg := GetApp().Config

	for i, path := range args {
		html, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		parser, err := zillow.NewParser(string(html))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		listings, err := parser.Listings()
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("No listings extracted")
			continue
		}

		pageNum := i + 1
		if info := parser.Pagination(cfg.ResultsPerPage); info.TotalResults > 0 {
			if info.CurrentPage > 1 {
				pageNum = info.CurrentPage
			}
			if i == 0 {
				pagination = info
			}
		}
		for j := range listings {
			listings[j].PageNumber = pageNum
		}

		all = append(all, listings...)
		summaries = append(summaries, zillow.PageSummary{
			Page:     pageNum,
			URL:      path,
			Listings: len(listings),
		})

		fmt.Printf("%s %s: %d listings\n", ui.Success("✓"), filepath.Base(path), len(listings))
	}

	if len(all) == 0 {
		return fmt.Errorf("no listings found in %d files", len(args))
	}

	if parseOutDir == "" {
		printListings(all)
		return nil
	}

	stats := zillow.Summarize(all, summaries)

	if parseFormat == "json" || parseFormat == "all" {
		if err := export.WriteListingsJSON(all, filepath.Join(parseOutDir, parsePrefix+".json")); err != nil {
			return err
		}
	}
	if parseFormat == "csv" || parseFormat == "all" {
		if err := export.WriteListingsCSV(all, filepath.Join(parseOutDir, parsePrefix+".csv")); err != nil {
			return err
		}
	}
	if err := export.WriteStatsJSON(stats, pagination, filepath.Join(parseOutDir, parsePrefix+"_stats.json")); err != nil {
		return err
	}

	fmt.Printf("\n%s Exported %d listings to %s\n", ui.Success("✓"), len(all), parseOutDir)
	return nil
}

// printListings prints a compact table of parsed listings
func printListings(listings []zillow.Listing) {
	fmt.Printf("\n%s\n", ui.Bold(fmt.Sprintf("%d listings", len(listings))))
	for _, l := range listings {
		addr := l.FullAddress
		if strings.TrimSpace(strings.Trim(addr, ", ")) == "" {
			addr = l.DetailURL
		}
		fmt.Printf("  %-10s %-50s %10s  %.0f bd / %.1f ba\n",
			l.ZPID, addr, l.Price, l.Bedrooms, l.Bathrooms)
	}
	fmt.Println()
}
