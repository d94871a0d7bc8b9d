// Package logger builds the zerolog.Logger every command in this repo
// logs through, mirroring the level/pretty configuration shape used
// elsewhere in this codebase's service entrypoints.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Config selects the logger's verbosity and output format.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Pretty bool
}

// New builds a zerolog.Logger writing to stderr, pretty-printed in a
// terminal when Pretty is set, structured JSON otherwise.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer = os.Stderr
	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: writer, TimeFormat: "15:04:05"}).
			With().Timestamp().Caller().Logger()
	}
	return zerolog.New(writer).With().Timestamp().Caller().Logger()
}
