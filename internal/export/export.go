// Package export writes scrape results to disk: listing JSON/CSV, summary
// stats, and per-page HTML or Markdown snapshots.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/zillow"
)

// statsDocument is the on-disk shape of the stats export
type statsDocument struct {
	Statistics zillow.Stats          `json:"statistics"`
	Pagination zillow.PaginationInfo `json:"pagination"`
}

// WriteListingsJSON writes the listing set as a pretty-printed JSON array
func WriteListingsJSON(listings []zillow.Listing, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal listings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("file", path).Int("listings", len(listings)).Msg("Listings saved as JSON")
	return nil
}

// WriteStatsJSON writes summary statistics and pagination info
func WriteStatsJSON(stats zillow.Stats, pagination zillow.PaginationInfo, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(statsDocument{Statistics: stats, Pagination: pagination}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("file", path).Msg("Statistics saved")
	return nil
}

// ensureDir creates the parent directory of path if needed
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
