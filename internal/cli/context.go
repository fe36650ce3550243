// Package cli provides the command-line interface for the scraper.
package cli

import (
	"github.com/AmirAdarGit/zillow-scraper-new/internal/app"
)

// globalApp holds the Application for the lifetime of the invoked command
var globalApp *app.Application

// SetApp stores the Application for commands to access
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the Application
func GetApp() *app.Application {
	return globalApp
}
