// Package main provides the entry point for the incomelens CLI.
package main

import (
	"context"
	"os"

	"github.com/spektr-org/incomelens/cmd/incomelens/app"
)

// Version information populated at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := application.Execute(ctx, os.Args[1:]); err != nil {
		application.Logger().Debug().Err(err).Msg("Command failed")
		app.ExitOnError(err)
	}
}
