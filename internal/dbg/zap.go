package dbg

import (
	"github.com/natefinch/lumberjack"
	"github.com/peter-kozarec/barsim/pkg/utility"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileOptions configures the rotated json log file a logger can be teed into
type FileOptions struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func NewDevLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return withExecutionID(logger)
}

func NewProdLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return withExecutionID(logger)
}

// WithFile tees every entry at or above level into a rotated json file
func WithFile(logger *zap.Logger, opts FileOptions, level zapcore.Level) *zap.Logger {
	if opts.Path == "" {
		return logger
	}

	writer := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	file := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(writer), level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, file.With([]zap.Field{executionIDField()}))
	}))
}

func withExecutionID(logger *zap.Logger) *zap.Logger {
	return logger.With(executionIDField())
}

func executionIDField() zap.Field {
	return zap.Stringer("execution_id", utility.GetExecutionID())
}
