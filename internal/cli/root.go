package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/app"
	"github.com/AmirAdarGit/zillow-scraper-new/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "zillow-scraper",
	Short:   "Scrape Zillow rental search results through a rendering proxy",
	Long:    `zillow-scraper fetches Zillow rental search-result pages through a hosted rendering API (or local headless Chrome), extracts the listings embedded in the page state, and exports them as JSON or CSV.`,
	Version: "1.0.0",
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd)

	// Initialize the application lazily, so -h/help never touch the keyring
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		setupLogging(cfg)

		appCtx, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(appCtx)
		return nil
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetApp()
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.HTTPTimeout)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(nil)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpFunc(customHelpFunc)
}

// setupLogging configures the global zerolog logger from config
func setupLogging(cfg *config.Config) {
	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cfg.JSONLog {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
