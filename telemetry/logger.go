package telemetry

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger from cfg. The returned close func releases the
// log file when Output names one; it is a no-op for stdout and stderr.
func NewLogger(cfg LoggingConfig) (zerolog.Logger, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Output {
	case "", "stderr":
		log, err := newLogger(os.Stderr, cfg)
		return log, nop, err
	case "stdout":
		log, err := newLogger(os.Stdout, cfg)
		return log, nop, err
	}

	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nop, fmt.Errorf("open log output: %w", err)
	}
	log, err := newLogger(f, cfg)
	if err != nil {
		_ = f.Close()
		return zerolog.Nop(), nop, err
	}
	return log, f.Close, nil
}

func newLogger(w io.Writer, cfg LoggingConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
		}
		level = l
	}
	if cfg.Format == "" || cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
