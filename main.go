package main

import (
	"fmt"
	"os"

	"github.com/tphakala/reviewharvest-go/cmd"
	"github.com/tphakala/reviewharvest-go/internal/conf"
	"github.com/tphakala/reviewharvest-go/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := conf.Load()
	if err != nil {
		return fmt.Errorf("error while loading configuration: %w", err)
	}

	logging.Init(settings.Debug)
	logging.Info("reviewharvest starting", "version", Version)

	return cmd.RootCommand(settings).Execute()
}
