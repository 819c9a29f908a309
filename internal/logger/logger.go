// Package logger provides a configured zerolog instance.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/rs/zerolog"
)

// ServiceName identifies the binary in every log line.
type ServiceName string

// NewLogger creates a new configured instance of zerolog.Logger.
// It reads the log level and format from the config and adds default fields like service name and caller.
func NewLogger(cfg *config.Config, service ServiceName) (*zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Logger.Level)
	if err != nil || cfg.Logger.Level == "" {
		// Default to info level if config is invalid or missing
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if strings.EqualFold(cfg.Logger.Format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("service", string(service)).
		Caller().
		Logger().
		Level(level)

	return &logger, nil
}
