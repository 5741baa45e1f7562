// Package telemetry builds the logger and metrics shared by the CLI and the
// keypad UI.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"keycalc/internal/calc"
	"keycalc/internal/config"
)

// NewLogger creates a zerolog logger from the logging section. The returned
// closer releases the output file, if any.
func NewLogger(cfg config.Logging) (zerolog.Logger, io.Closer, error) {
	var writer io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "stdout":
		writer = os.Stdout
	case "stderr", "":
		writer = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, err
		}
		writer, closer = file, file
	}
	return newLogger(writer, cfg), closer, nil
}

func newLogger(w io.Writer, cfg config.Logging) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
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

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogEvaluation records one evaluation: debug when it succeeded, warn with
// the error otherwise.
func LogEvaluation(log zerolog.Logger, expr string, r calc.Result, elapsed time.Duration) {
	ev := log.Debug()
	if r.Err != nil {
		ev = log.Warn().Err(r.Err)
	}
	ev.Str("expr", expr).
		Str("result", r.Text).
		Str("estimate", r.Estimate).
		Dur("elapsed", elapsed).
		Msg("evaluated")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
