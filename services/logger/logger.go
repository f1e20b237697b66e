package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the printf-style logger used across services.
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// ZapLogger implements Logger on top of zap.
type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZap builds a production JSON logger when env is "production" and a
// colored development logger otherwise.
func NewZap(env string) (*ZapLogger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}

	base, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return Wrap(base), nil
}

// Wrap adapts an existing zap logger.
func Wrap(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base, sugar: base.Sugar()}
}

// NewNop discards everything.
func NewNop() *ZapLogger {
	return Wrap(zap.NewNop())
}

func (l *ZapLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *ZapLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *ZapLogger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Zap exposes the structured logger for middleware.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.base
}

func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}
