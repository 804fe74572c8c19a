// Package app provides the application context and dependency management
// for the incomelens CLI. It centralizes configuration, logging and the
// load-and-clean step every data command starts with.
package app

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spektr-org/incomelens/cleaner"
	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/logging"
)

// App represents the incomelens application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	stdout io.Writer
}

// New creates a new App instance with the given version information.
// Configuration is loaded from the environment and config file; flags are
// applied once a command is parsed.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig(newViper(), "")
	if err != nil {
		return nil, err
	}

	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		stdout:  os.Stdout,
	}
	logger := NewLogger(config)
	app.logger = &logger
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// SetOutput redirects command output, mainly for tests.
func (a *App) SetOutput(w io.Writer) {
	a.stdout = w
}

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.stdout)
	return rootCmd.ExecuteContext(ctx)
}

// LoadData loads the dataset at the configured path and cleans it.
// Load failures are fatal to every data command.
func (a *App) LoadData(ctx context.Context) (*dataset.Table, *cleaner.Report, error) {
	ctx = logging.WithLogger(ctx, a.logger)

	raw, err := dataset.Load(ctx, a.config.DataPath)
	if err != nil {
		return nil, nil, err
	}

	cleaned, report, err := cleaner.Clean(ctx, raw)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Info().
		Str("source", a.config.DataPath).
		Int("rows", cleaned.Len()).
		Int("operations", len(report.Operations)).
		Msg("Dataset ready")
	return cleaned, report, nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// out returns the writer a command prints to.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
