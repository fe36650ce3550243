package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/export"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/ui"
	"github.com/AmirAdarGit/zillow-scraper-new/pkg/models"
)

var (
	fetchOutput   string
	fetchEngine   string
	fetchMarkdown bool
)

// fetchCmd renders a single page and saves the HTML, without parsing.
// Mostly a debugging aid: inspect exactly what the rendering engine returns.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Render a single page and save its HTML",
	Example: `  # Save the rendered page for inspection
  zillow-scraper fetch -o page.html '<url>'

  # Render locally and keep a Markdown version too
  zillow-scraper fetch --engine=local --markdown -o page.html '<url>'`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "page.html", "File path for the HTML snapshot")
	fetchCmd.Flags().StringVar(&fetchEngine, "engine", "", "Rendering engine: api or local (default api)")
	fetchCmd.Flags().BoolVar(&fetchMarkdown, "markdown", false, "Also save a cleaned Markdown version")
}

func runFetch(cmd *cobra.Command, args []string) error {
	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	a := GetApp()
	cfg := a.Config
	if fetchEngine != "" {
		if fetchEngine != "api" && fetchEngine != "local" {
			return fmt.Errorf("invalid engine: %s (must be api or local)", fetchEngine)
		}
		cfg.Engine = fetchEngine
	}

	page, err := a.Engine().Render(cmd.Context(), models.RequestOptions{
		URL:         url,
		Render:      cfg.Render,
		Country:     cfg.Country,
		Timeout:     cfg.HTTPTimeout,
		WaitSeconds: cfg.WaitSeconds,
		Proxy:       cfg.Proxy,
	})
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	if err := export.WriteHTML(page, fetchOutput); err != nil {
		return err
	}
	fmt.Printf("%s Saved %d bytes to %s (%dms via %s)\n",
		ui.Success("✓"), len(page.HTML), fetchOutput, page.ResponseTime, page.Engine)

	if fetchMarkdown {
		mdPath := strings.TrimSuffix(fetchOutput, filepath.Ext(fetchOutput)) + ".md"
		if err := export.WriteMarkdown(page, mdPath); err != nil {
			return err
		}
		fmt.Printf("%s Saved Markdown to %s\n", ui.Success("✓"), mdPath)
	}

	return nil
}
