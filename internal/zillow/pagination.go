package zillow

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// PageURL rewrites a Zillow search URL to point at the given result page.
//
// Zillow search is a SPA whose state lives in the searchQueryState query
// parameter: pagination.currentPage is set inside that JSON blob, and the
// path gains a cosmetic /N_p/ segment for pages past the first. URLs without
// a searchQueryState parameter are returned unchanged.
func PageURL(baseURL string, page int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid search URL: %w", err)
	}

	stateJSON := u.Query().Get("searchQueryState")
	if stateJSON == "" {
		return baseURL, nil
	}

	var state map[string]any
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return "", fmt.Errorf("invalid searchQueryState: %w", err)
	}

	state["pagination"] = map[string]any{"currentPage": page}

	newState, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("failed to encode searchQueryState: %w", err)
	}

	// Drop any existing /N_p/ segment before adding the new one
	var segments []string
	for _, part := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if part == "" || strings.HasSuffix(part, "_p") {
			continue
		}
		segments = append(segments, part)
	}
	if page > 1 {
		segments = append(segments, fmt.Sprintf("%d_p", page))
	}
	u.Path = "/" + strings.Join(segments, "/")
	if len(segments) > 0 {
		u.Path += "/"
	}

	u.RawQuery = url.Values{"searchQueryState": {string(newState)}}.Encode()

	return u.String(), nil
}
