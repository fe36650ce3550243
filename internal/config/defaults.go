package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	// Hosted rendering API endpoint (Nimble realtime web API)
	DefaultAPIURL  = "https://api.webit.live/api/v1/realtime/web"
	DefaultCountry = "US"
	DefaultRender  = true
	DefaultEngine  = "api"

	DefaultUserAgent = "zillow-scraper/1.0 (https://github.com/AmirAdarGit/zillow-scraper-new)"

	// Rendering a search page through the proxy regularly takes over a minute
	DefaultHTTPTimeout = 120 * time.Second

	DefaultMaxPages = 10
	// Zillow shows 20 results per search page
	DefaultResultsPerPage = 20

	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 2

	DefaultBrowserHeadless = true
	DefaultWaitSeconds     = 5

	DefaultCacheTTL          = 15 * time.Minute
	DefaultCacheMaxSizeBytes = 100 * 1024 * 1024 // 100MB

	DefaultOutputDir = "output"
)
