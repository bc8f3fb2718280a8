// Package logging builds the zerolog loggers handed to every component.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Levels used when nothing is configured. Terminal commands keep stderr
// quiet; the server reports its lifecycle.
const (
	CLILevel    = zerolog.WarnLevel
	ServerLevel = zerolog.InfoLevel
)

// New returns a console logger writing to w. level is a zerolog level
// name; empty or unparsable names use fallback.
func New(w io.Writer, level string, fallback zerolog.Level) zerolog.Logger {
	lvl := fallback
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && parsed != zerolog.NoLevel {
			lvl = parsed
		}
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// Stderr is New on os.Stderr.
func Stderr(level string, fallback zerolog.Level) zerolog.Logger {
	return New(os.Stderr, level, fallback)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
