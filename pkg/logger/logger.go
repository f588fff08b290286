// Package logger provides a zap-based application logger. Loggers are
// constructed explicitly and injected into the components that need them;
// there is no package-level instance.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a minimum logging level.
type Level zapcore.Level

// Log levels, lowest to highest.
const (
	LevelDebug = Level(zapcore.DebugLevel)
	LevelInfo  = Level(zapcore.InfoLevel)
	LevelWarn  = Level(zapcore.WarnLevel)
	LevelError = Level(zapcore.ErrorLevel)
)

// ParseLevel converts a config string such as "debug" into a Level.
// Unknown values default to LevelInfo.
func ParseLevel(s string) Level {
	var l zapcore.Level
	if err := l.Set(s); err != nil {
		return LevelInfo
	}
	return Level(l)
}

// TraceIDFn returns the trace id carried by the context, or "" when the
// request is not being traced.
type TraceIDFn func(ctx context.Context) string

// Logger wraps zap with context-aware logging methods. When a TraceIDFn is
// provided, every record is enriched with the current trace id.
type Logger struct {
	log       *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a Logger writing JSON records to w at the given minimum
// level. service is stamped on every record. traceIDFn may be nil.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.AddSync(w),
		zapcore.Level(minLevel),
	)
	log := zap.New(core).Sugar().With("service", service)

	return &Logger{log: log, traceIDFn: traceIDFn}
}

// Debug logs at debug level. args are alternating key/value pairs.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log.Debugw(msg, l.enrich(ctx, args)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log.Infow(msg, l.enrich(ctx, args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log.Warnw(msg, l.enrich(ctx, args)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log.Errorw(msg, l.enrich(ctx, args)...)
}

// Sync flushes buffered records. Call before exit.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

func (l *Logger) enrich(ctx context.Context, args []any) []any {
	if l.traceIDFn == nil {
		return args
	}
	id := l.traceIDFn(ctx)
	if id == "" {
		return args
	}
	return append(args, "trace_id", id)
}
