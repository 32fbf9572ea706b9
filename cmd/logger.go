package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// newLogger builds the run logger: errors only by default, info with
// --verbose, debug with caller information with --debug.
func newLogger(w io.Writer, debug, verbose bool) zerolog.Logger {
	level := zerolog.ErrorLevel
	switch {
	case debug:
		level = zerolog.DebugLevel
	case verbose:
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	ctx := zerolog.New(console).Level(level).With().Timestamp()
	if debug {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}
