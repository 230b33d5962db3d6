// Command lens keeps a document library and surfaces related,
// supporting and contradictory sections for a selected passage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// API keys and LENS_LOG_LEVEL may live in a local .env file.
	_ = godotenv.Load()
	if lvl, err := logger.ParseLevel(os.Getenv("LENS_LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetInitializer(build)

	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
