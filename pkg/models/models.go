package models

import "time"

// Page represents one rendered search-result page
type Page struct {
	URL          string    `json:"url"`
	PageNumber   int       `json:"page_number"`
	StatusCode   int       `json:"status_code"`
	HTML         string    `json:"html,omitempty"`
	Engine       string    `json:"engine,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
	ResponseTime int64     `json:"response_time_ms"`
}

// RequestOptions contains options for rendering a single page
type RequestOptions struct {
	URL         string
	Render      bool
	Country     string
	Headers     map[string]string
	Timeout     time.Duration
	WaitSeconds int
	Proxy       string
}
