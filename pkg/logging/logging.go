// Package logging builds the zerolog loggers used by the CLI and the HTTP
// service.
package logging

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how verbosely a logger writes
type Options struct {
	Level string
	File  string // rotated JSON log written alongside the console when set
	App   string
}

// Rotation limits for Options.File
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// New returns a logger writing to out. A terminal gets the console writer,
// anything else gets JSON lines.
func New(out *os.File, opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = out
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	if opts.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		})
	}

	return newLogger(w, level, opts.App), nil
}

// NewWriter returns a JSON logger writing to w, used by tests and the server
// when output is captured.
func NewWriter(w io.Writer, level string) (zerolog.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return newLogger(w, l, ""), nil
}

func newLogger(w io.Writer, level zerolog.Level, app string) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp()
	if app != "" {
		ctx = ctx.Str("app", app)
	}
	return ctx.Logger().Level(level)
}

// ParseLevel parses a level name, defaulting to info when empty
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "failed to parse logging level %q", level)
	}
	return l, nil
}
