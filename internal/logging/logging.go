// Package logging configures zerolog for the process. Each stage runs
// as an independent unit of work, so there is no file rotation or
// broadcast machinery here: output goes to stderr and the platform
// collects it.
package logging

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and output format and returns the base
// logger. Format "console" renders human-readable output; "json" is
// the default; anything else auto-detects from the terminal.
func Init(level, format string) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if useConsole(format) {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	log.Logger = logger
	return logger
}

// Component returns a child of the global logger tagged with the
// component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func useConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "json":
		return false
	default:
		return isatty.IsTerminal(os.Stderr.Fd())
	}
}
