package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors zap's level set for callers that don't import zap directly.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var (
	mu    sync.RWMutex
	atom  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  *zap.Logger
	once  sync.Once
	sugar *zap.SugaredLogger
)

func init() {
	ensure()
}

func ensure() {
	once.Do(func() {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			atom,
		)
		base = zap.New(core)
		sugar = base.Sugar()
	})
}

// SetLevel changes the global log level at runtime.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	switch level {
	case DEBUG:
		atom.SetLevel(zapcore.DebugLevel)
	case INFO:
		atom.SetLevel(zapcore.InfoLevel)
	case WARN:
		atom.SetLevel(zapcore.WarnLevel)
	case ERROR:
		atom.SetLevel(zapcore.ErrorLevel)
	}
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}

func component(c string) *zap.SugaredLogger {
	return sugar.Named(c)
}

func fieldsToArgs(fields map[string]interface{}) []interface{} {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func DebugC(c, msg string) { component(c).Debug(msg) }
func InfoC(c, msg string)  { component(c).Info(msg) }
func WarnC(c, msg string)  { component(c).Warn(msg) }
func ErrorC(c, msg string) { component(c).Error(msg) }

func DebugCF(c, msg string, fields map[string]interface{}) {
	component(c).Debugw(msg, fieldsToArgs(fields)...)
}

func InfoCF(c, msg string, fields map[string]interface{}) {
	component(c).Infow(msg, fieldsToArgs(fields)...)
}

func WarnCF(c, msg string, fields map[string]interface{}) {
	component(c).Warnw(msg, fieldsToArgs(fields)...)
}

func ErrorCF(c, msg string, fields map[string]interface{}) {
	component(c).Errorw(msg, fieldsToArgs(fields)...)
}
