package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Loggers splits output by severity: InfoLogger writes to stdout and
// ErrorLogger to stderr. Both are teed into the rotating log file when one
// is configured.
type Loggers struct {
	InfoLogger  *zap.SugaredLogger
	ErrorLogger *zap.SugaredLogger

	info  *zap.Logger
	error *zap.Logger
}

type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func SetupLogger(opts Options) (*Loggers, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var file zapcore.WriteSyncer
	if opts.File != "" {
		file = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
	}

	build := func(out zapcore.WriteSyncer, enabler zapcore.LevelEnabler) *zap.Logger {
		core := zapcore.NewCore(encoder, zapcore.Lock(out), enabler)
		if file != nil {
			core = zapcore.NewTee(core, zapcore.NewCore(encoder, file, enabler))
		}
		return zap.New(core, zap.AddCaller())
	}

	infoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l < zapcore.ErrorLevel
	})
	errorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= level && l >= zapcore.ErrorLevel
	})

	info := build(zapcore.AddSync(os.Stdout), infoLevel)
	errLogger := build(zapcore.AddSync(os.Stderr), errorLevel)

	return &Loggers{
		InfoLogger:  info.Sugar(),
		ErrorLogger: errLogger.Sugar(),
		info:        info,
		error:       errLogger,
	}, nil
}

// NewNop returns loggers that discard everything.
func NewNop() *Loggers {
	nop := zap.NewNop()
	return &Loggers{
		InfoLogger:  nop.Sugar(),
		ErrorLogger: nop.Sugar(),
		info:        nop,
		error:       nop,
	}
}

func (l *Loggers) Sync() {
	_ = l.info.Sync()
	_ = l.error.Sync()
}
