package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/AmirAdarGit/zillow-scraper-new/internal/cli"
)

func main() {
	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupt received, shutting down...")
		os.Exit(1)
	}()

	cli.Execute()
}
