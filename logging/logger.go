// Package logging provides structured logging for incomelens using zerolog.
// Terminals get the human-readable console writer, everything else gets JSON.
//
//	log := logging.Default()
//	log.Info().Int("rows", n).Msg("Dataset loaded")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger zerolog.Logger

	// Nop discards everything.
	Nop = zerolog.Nop()
)

func init() {
	defaultLogger = createDefaultLogger()
}

func createDefaultLogger() zerolog.Logger {
	var writer io.Writer = os.Stderr

	if isTerminal(os.Stderr) && os.Getenv("LOG_FORMAT") != "json" {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	level := parseLevel(os.Getenv("LOG_LEVEL"))
	zerolog.SetGlobalLevel(level)

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Default returns the default global logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New creates a new logger with the given writer.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}

// Debug starts a new debug level log event.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts a new info level log event.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a new warning level log event.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts a new error level log event.
func Error() *zerolog.Event { return defaultLogger.Error() }

// Fatal starts a new fatal level log event (exits after logging).
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

// Err creates a new error log event with the given error.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
