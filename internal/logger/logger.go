// Package logger provides leveled, structured diagnostics on top of log/slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu      sync.RWMutex
	slogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	closer  io.Closer
)

// ParseLevel converts a level name to a slog.Level, defaulting to INFO
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init configures the package logger. Output defaults to stderr so that
// table output on stdout stays clean.
func Init(cfg Config) error {
	var out io.Writer = os.Stderr
	var c io.Closer

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = f
		c = f
	}

	SetOutput(out, cfg.Level, cfg.Format)

	mu.Lock()
	if closer != nil {
		closer.Close()
	}
	closer = c
	mu.Unlock()
	return nil
}

// SetOutput replaces the handler with one writing to w
func SetOutput(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	slogger = slog.New(h)
	mu.Unlock()
}

// L returns the current logger
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// With returns a logger carrying the given attributes
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

type ctxKey struct{}

// NewContext returns a context carrying l
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, or the package logger
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return L()
}

func Debug(msg string, args ...any) { L().Log(context.Background(), slog.LevelDebug, msg, args...) }
func Info(msg string, args ...any)  { L().Log(context.Background(), slog.LevelInfo, msg, args...) }
func Warn(msg string, args ...any)  { L().Log(context.Background(), slog.LevelWarn, msg, args...) }
func Error(msg string, args ...any) { L().Log(context.Background(), slog.LevelError, msg, args...) }

// Close releases a log file opened by Init
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	return err
}
