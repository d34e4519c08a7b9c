// Package logging provides the zerolog logger shared by the resolver and the
// router command.
//
// Example usage:
//
//	log := logging.Default()
//	log.Warn().Str("resource_type", name).Msg("Unknown resource type")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var defaultLogger atomic.Pointer[zerolog.Logger]

func init() {
	logger := New(defaultWriter(os.Stderr, "auto"), zerolog.InfoLevel)
	defaultLogger.Store(&logger)
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger.Store(&logger)
}

// New creates a timestamped logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Configure installs a stderr logger built from a level name
// (trace, debug, info, warn, error, disabled) and a format name
// (auto, console, json). The current logger is kept on error.
func Configure(level, format string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "", "auto", "console", "pretty", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected auto, console or json)", format)
	}

	SetDefault(New(defaultWriter(os.Stderr, format), l))
	return nil
}

// ParseLevel maps a level name to a zerolog level. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch name := strings.ToLower(level); name {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "none", "off":
		return zerolog.Disabled, nil
	default:
		l, err := zerolog.ParseLevel(name)
		if err != nil {
			return zerolog.NoLevel, fmt.Errorf("invalid log level %q (expected trace, debug, info, warn, error or off)", level)
		}
		return l, nil
	}
}

// defaultWriter picks console output for terminals and JSON otherwise.
func defaultWriter(out *os.File, format string) io.Writer {
	format = strings.ToLower(format)
	if format == "" || format == "auto" {
		format = "json"
		if info, err := out.Stat(); err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
			format = "console"
		}
	}

	if format == "console" || format == "pretty" {
		return zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}
	return out
}
