// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Service string
	Env     string
	Level   string
	// Writer defaults to stderr.
	Writer io.Writer
	// NoColor disables ANSI colors in console output.
	NoColor bool
}

// New returns a console logger in development and a JSON logger otherwise,
// and installs it as the zerolog global logger.
func New(opts Options) zerolog.Logger {
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if opts.Env == "" || opts.Env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    opts.NoColor,
		}).With().Timestamp().Str("service", opts.Service).Logger()
	} else {
		logger = zerolog.New(out).
			With().
			Timestamp().
			Caller().
			Str("service", opts.Service).
			Logger()
	}
	logger = logger.Level(level)
	log.Logger = logger
	return logger
}
