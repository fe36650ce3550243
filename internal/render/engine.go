// Package render provides page rendering engines. The primary engine posts
// URLs to a hosted rendering proxy; a local engine drives headless Chrome for
// runs without an API token.
package render

import (
	"context"

	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

// Engine is the interface all rendering engines implement
type Engine interface {
	// Render fetches the URL and returns the fully rendered page
	Render(ctx context.Context, opts models.RequestOptions) (*models.Page, error)

	// Name returns the name of the engine implementation
	Name() string
}
