package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/andrewferrier/memy/internal/output"
)

// EnvLogLevel overrides the level chosen by --verbose.
const EnvLogLevel = "MEMY_LOG_LEVEL"

// levelFor maps the --verbose count to a log level. From three upwards the
// caller is reported too.
func levelFor(verbose int) (level log.Level, caller bool) {
	switch {
	case verbose <= 0:
		return log.WarnLevel, false
	case verbose == 1:
		return log.InfoLevel, false
	case verbose == 2:
		return log.DebugLevel, false
	default:
		return log.DebugLevel, true
	}
}

// newLogger builds the stderr logger for one invocation.
func newLogger(w io.Writer, verbose int, color output.ColorMode) (*slog.Logger, error) {
	level, caller := levelFor(verbose)
	if s := os.Getenv(EnvLogLevel); s != "" {
		parsed, err := log.ParseLevel(s)
		if err != nil {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q", EnvLogLevel, s))
		}
		level = parsed
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: false,
		ReportCaller:    caller,
	})
	switch color {
	case output.ColorAlways:
		handler.SetColorProfile(termenv.ANSI)
	case output.ColorNever:
		handler.SetColorProfile(termenv.Ascii)
	}

	logger := slog.New(handler)
	if level <= log.DebugLevel {
		logger = logger.With("invocation", invocationID())
	}
	return logger, nil
}

func invocationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
