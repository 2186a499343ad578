package logging

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

var (
	defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	loggerMu      sync.RWMutex
)

// Default returns the process wide logger.
func Default() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the process wide logger. A nil logger is ignored.
func SetDefault(logger *slog.Logger) {
	if logger == nil {
		return
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = logger
}

type ctxLoggerKey struct{}

// With returns a copy of ctx carrying logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger stored in ctx, or the default logger.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return Default()
}

// ErrAttr builds an "error" attribute. goerr values are expanded into a group.
func ErrAttr(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}

	var ge *goerr.Error
	if !errors.As(err, &ge) {
		return slog.String("error", err.Error())
	}

	attrs := []any{slog.String("message", err.Error())}
	for k, v := range ge.Values() {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.Group("error", attrs...)
}
