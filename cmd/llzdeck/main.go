// Package main is the entry point for the llzdeck shell.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/llzware/llzdeck/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// No flags: a deck boots straight into the shell. Configuration
	// comes from the config file and LLZDECK_* environment variables.
	application, err := app.New(app.Options{
		ConfigPath: os.Getenv("LLZDECK_CONFIG"),
		Version:    fmt.Sprintf("%s (%s, %s)", version, commit, date),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "llzdeck: failed to initialize: %v\n", err)
		return 1
	}

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		for range signals {
			if err := application.Shutdown(); err == nil {
				return
			}
		}
	}()

	if err := application.Run(); err != nil {
		// A user-requested quit is a normal exit.
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "llzdeck: %v\n", err)
		return 1
	}

	return 0
}
