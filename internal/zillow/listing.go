package zillow

import (
	"fmt"
	"strconv"
	"strings"
)

const detailURLBase = "https://www.zillow.com"

// Listing is one rental listing extracted from a search-result page
type Listing struct {
	ZPID          string  `json:"zpid"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Zipcode       string  `json:"zipcode"`
	FullAddress   string  `json:"full_address"`
	Price         string  `json:"price"`
	PriceNumeric  float64 `json:"price_numeric"`
	Bedrooms      float64 `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	AreaSqft      float64 `json:"area_sqft"`
	PropertyType  string  `json:"property_type"`
	ListingType   string  `json:"listing_type"`
	ListingStatus string  `json:"listing_status"`
	DetailURL     string  `json:"detail_url"`
	ImageURL      string  `json:"image_url"`
	LotArea       float64 `json:"lot_area"`
	LotAreaUnit   string  `json:"lot_area_unit"`
	YearBuilt     int     `json:"year_built"`
	DaysOnZillow  string  `json:"days_on_zillow"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	BrokerName    string  `json:"broker_name"`
	HasImage      bool    `json:"has_image"`
	IsFeatured    bool    `json:"is_featured"`

	// Set by the crawler when scraping multiple pages
	PageNumber int    `json:"page_number,omitempty"`
	PageURL    string `json:"page_url,omitempty"`
}

// parseListing builds a Listing from one raw listResults entry. Entries
// without a zpid are placeholders (ads, "build your own" cards) and are
// reported as not ok.
func parseListing(raw map[string]any) (Listing, bool) {
	zpid := asString(raw["zpid"])
	if zpid == "" {
		return Listing{}, false
	}

	l := Listing{
		ZPID:          zpid,
		Address:       asString(raw["addressStreet"]),
		City:          asString(raw["addressCity"]),
		State:         asString(raw["addressState"]),
		Zipcode:       asString(raw["addressZipcode"]),
		Price:         asString(raw["price"]),
		PriceNumeric:  asFloat(raw["unformattedPrice"]),
		Bedrooms:      asFloat(raw["beds"]),
		Bathrooms:     asFloat(raw["baths"]),
		AreaSqft:      asFloat(raw["area"]),
		ListingType:   asString(raw["statusType"]),
		ListingStatus: asString(raw["statusText"]),
		ImageURL:      asString(raw["imgSrc"]),
		LotArea:       asFloat(raw["lotAreaValue"]),
		LotAreaUnit:   asString(raw["lotAreaUnit"]),
		BrokerName:    asString(raw["brokerName"]),
		HasImage:      asBool(raw["hasImage"]),
		IsFeatured:    asBool(raw["isFeatured"]),
	}

	l.FullAddress = fmt.Sprintf("%s, %s, %s %s", l.Address, l.City, l.State, l.Zipcode)

	if detail := asString(raw["detailUrl"]); detail != "" {
		if !strings.HasPrefix(detail, "http") {
			detail = detailURLBase + detail
		}
		l.DetailURL = detail
	}

	if homeInfo := asMap(asMap(raw["hdpData"])["homeInfo"]); homeInfo != nil {
		l.PropertyType = asString(homeInfo["homeType"])
		l.YearBuilt = int(asFloat(homeInfo["yearBuilt"]))
	}

	if variable := asMap(raw["variableData"]); variable != nil {
		l.DaysOnZillow = asString(variable["text"])
	}

	if latLong := asMap(raw["latLong"]); latLong != nil {
		l.Latitude = asFloat(latLong["latitude"])
		l.Longitude = asFloat(latLong["longitude"])
	}

	return l, true
}

// asMap returns v as a map, or nil when it is anything else
func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asString renders scalar JSON values as strings; zpid in particular arrives
// as either a number or a string depending on the page build
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asFloat coerces numeric JSON values (and numeric strings) to float64
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
