package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spektr-org/incomelens/cmd/incomelens/output"
	"github.com/spektr-org/incomelens/dataset"
	"github.com/spektr-org/incomelens/logging"
	"github.com/spektr-org/incomelens/schema"
)

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "incomelens",
		Short:   "Exploratory analysis dashboard for income data",
		Version: a.version,
		Long: schema.Title + `

incomelens loads the income dataset, cleans it (top 5% of income winsorized,
missing employment durations mean-imputed) and serves a dashboard with the
raw table, over-time charts, bivariate charts and custom charts.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "data", Title: "Data Commands:"})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./incomelens.yaml)")
	flags.String("data", dataset.DefaultPath, "path to the income CSV")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("log-format", "", "log format: auto, console, json")

	rootCmd.SetVersionTemplate("incomelens {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.NewServeCommand())
	rootCmd.AddCommand(a.NewExportCommand())

	rootCmd.AddCommand(a.NewDescribeCommand())
	rootCmd.AddCommand(a.NewCleanCommand())

	rootCmd.AddCommand(a.NewVersionCommand())
}

// setupCommand is called before any command runs. It reloads configuration
// with the parsed flags on top and reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	v := newViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	config, err := LoadConfig(v, mustGetString(cmd, "config"))
	if err != nil {
		return err
	}

	format := mustGetString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
	)
	a.config = config

	logger := NewLogger(config)
	a.logger = &logger
	logging.SetDefault(logger)

	return nil
}

// bindFlags binds every flag named after a config key to that key.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	keys := []string{
		keyData, keyHost, keyPort, keyCacheTTL, keyPageSize,
		keyChartWidth, keyChartHeight, keyBins, keyLogLevel, keyLogFormat,
	}
	for _, key := range keys {
		if f := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// format returns the output format for a command, detecting it from the
// terminal when no --format was given.
func (a *App) format() output.Format {
	return output.DetectFormat(a.config.Format)
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
