package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global = zap.NewNop()

// Init configures the process-wide logger at the given level.
func Init(level string) error {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	global = l
	return nil
}

func L() *zap.Logger { return global }

// Named returns a child logger tagged with the component name.
func Named(name string) *zap.Logger { return global.Named(name) }

func Sync() error { return global.Sync() }
