package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
)

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.InvalidInput(errors.PhaseConfig, "unknown log level "+s)
	}
	return lvl, nil
}

// newLogger builds the process logger. An empty format picks console when
// stderr is a terminal and JSON otherwise.
func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if format == "" {
		format = formatJSON
		if term.IsTerminal(int(os.Stderr.Fd())) {
			format = formatConsole
		}
	}

	var cfg zap.Config
	switch format {
	case formatJSON:
		cfg = zap.NewProductionConfig()
	case formatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	default:
		return nil, errors.InvalidInput(errors.PhaseConfig, "unknown log format "+format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// installLogger hands l to every package that logs.
func installLogger(l *zap.Logger) {
	widener.SetLogger(l.Named("widener"))
	archive.SetLogger(l.Named("archive"))
}
