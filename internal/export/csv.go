package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/zillow"
)

// csvHeader is the fixed column order of the CSV export
var csvHeader = []string{
	"zpid", "address", "city", "state", "zipcode", "full_address",
	"price", "price_numeric", "bedrooms", "bathrooms", "area_sqft",
	"property_type", "listing_type", "listing_status", "detail_url",
	"image_url", "lot_area", "lot_area_unit", "year_built",
	"days_on_zillow", "latitude", "longitude", "broker_name",
	"has_image", "is_featured", "page_number", "page_url",
}

// WriteListingsCSV writes the listing set as CSV with a fixed header order
func WriteListingsCSV(listings []zillow.Listing, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, l := range listings {
		record := []string{
			l.ZPID,
			l.Address,
			l.City,
			l.State,
			l.Zipcode,
			l.FullAddress,
			l.Price,
			formatFloat(l.PriceNumeric),
			formatFloat(l.Bedrooms),
			formatFloat(l.Bathrooms),
			formatFloat(l.AreaSqft),
			l.PropertyType,
			l.ListingType,
			l.ListingStatus,
			l.DetailURL,
			l.ImageURL,
			formatFloat(l.LotArea),
			l.LotAreaUnit,
			formatInt(l.YearBuilt),
			l.DaysOnZillow,
			formatFloat(l.Latitude),
			formatFloat(l.Longitude),
			l.BrokerName,
			strconv.FormatBool(l.HasImage),
			strconv.FormatBool(l.IsFeatured),
			formatInt(l.PageNumber),
			l.PageURL,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	log.Info().Str("file", path).Int("listings", len(listings)).Msg("Listings saved as CSV")
	return nil
}

// formatFloat renders zero values as empty cells
func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
