package zillow

import (
	"strconv"
	"strings"
)

// Distribution holds min/max/average for one numeric listing field
type Distribution struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// PageSummary records how many listings one page contributed
type PageSummary struct {
	Page     int    `json:"page"`
	URL      string `json:"url"`
	Listings int    `json:"listings_count"`
}

// Stats summarizes a scraped listing set
type Stats struct {
	TotalPages    int           `json:"total_pages"`
	TotalListings int           `json:"total_listings"`
	WithImages    int           `json:"with_images"`
	Featured      int           `json:"featured"`
	Pages         []PageSummary `json:"pages,omitempty"`
	Price         *Distribution `json:"price_stats,omitempty"`
	Beds          *Distribution `json:"beds_stats,omitempty"`
	Baths         *Distribution `json:"baths_stats,omitempty"`
	Area          *Distribution `json:"area_stats,omitempty"`
}

// Summarize computes summary statistics over the listing set. Zero and
// missing values are excluded from the distributions.
func Summarize(listings []Listing, pages []PageSummary) Stats {
	stats := Stats{
		TotalPages:    len(pages),
		TotalListings: len(listings),
		Pages:         pages,
	}

	var prices, beds, baths, areas []float64
	for _, l := range listings {
		if l.HasImage {
			stats.WithImages++
		}
		if l.IsFeatured {
			stats.Featured++
		}

		price := l.PriceNumeric
		if price == 0 {
			// Some page builds omit unformattedPrice; fall back to the
			// display string ("$2,350/mo").
			price, _ = ParseNumber(l.Price)
		}
		if price > 0 {
			prices = append(prices, price)
		}
		if l.Bedrooms > 0 {
			beds = append(beds, l.Bedrooms)
		}
		if l.Bathrooms > 0 {
			baths = append(baths, l.Bathrooms)
		}
		if l.AreaSqft > 0 {
			areas = append(areas, l.AreaSqft)
		}
	}

	stats.Price = distribution(prices)
	stats.Beds = distribution(beds)
	stats.Baths = distribution(baths)
	stats.Area = distribution(areas)

	return stats
}

func distribution(values []float64) *Distribution {
	if len(values) == 0 {
		return nil
	}
	d := &Distribution{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		if v < d.Min {
			d.Min = v
		}
		if v > d.Max {
			d.Max = v
		}
		sum += v
	}
	d.Average = sum / float64(len(values))
	return d
}

// ParseNumber converts lenient numeric strings to float64, tolerating the
// decorations Zillow applies to prices ("$2,350+/mo", "3 bds").
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)

	// Price ranges ("$1,200 - $1,500") collapse to "1200-1500"; keep the
	// lower bound. A leading '-' is a sign and stays.
	if len(cleaned) > 1 {
		if idx := strings.IndexRune(cleaned[1:], '-'); idx >= 0 {
			cleaned = cleaned[:idx+1]
		}
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
