// Package logging builds the zap logger used for prismafix diagnostics.
//
// User-facing messages go through package output; this logger carries the
// structured detail behind them (which lines were removed, watch events,
// write failures). Console logs go to stderr. A log file, when configured,
// receives JSON lines and is rotated by lumberjack.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Level is a zap level name: debug, info, warn, error. Empty means warn.
	Level string

	// Verbose forces debug level.
	Verbose bool

	// File, when set, also writes JSON logs to this path with rotation.
	File string

	// MaxSizeMB is the size at which the log file is rotated. Default 10.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Default 3.
	MaxBackups int
}

// New builds a logger. The returned close function flushes and releases
// the log file; it is safe to call when no file is configured.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	atom := zap.NewAtomicLevelAt(level)

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleCfg.TimeKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), atom),
	}

	var rotator *lumberjack.Logger
	if opts.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    withDefault(opts.MaxSizeMB, 10),
			MaxBackups: withDefault(opts.MaxBackups, 3),
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			atom,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...)).Named("prismafix")

	closeFn := func() error {
		// Sync on stderr fails on some platforms; only the file matters.
		_ = logger.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}

	return logger, closeFn, nil
}

func parseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.WarnLevel, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

func withDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
