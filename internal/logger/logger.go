package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string
	Dev   bool
}

// ParseLevel maps a level name to a zap level, defaulting to info
func ParseLevel(l string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(l)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// New builds the process logger. Dev mode logs human readable lines.
func New(cfg Config) (*zap.Logger, error) {
	lvl := ParseLevel(cfg.Level)
	if cfg.Dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build()
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
