// Package log configures the process-wide slog logger and allows
// passing a logger through a context.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Debug is set once at startup and read by packages that want to do
// extra work (eg dump page content) only in debug mode.
var Debug bool

type ctxKey struct{}

// LoggerCtxKey is the key under which a logger is stored in a context.
var LoggerCtxKey = ctxKey{}

func InitializeDefaultLogger(debug bool) {
	Debug = debug
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(LoggerCtxKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
