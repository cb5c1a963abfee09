// Package obs owns the service's observability surface: the shared
// structured logger and the Prometheus metric set.
package obs

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	loggerOnce sync.Once
	logger     *slog.Logger
)

// SetupLogging installs the shared slog logger at the given level.
// Safe to call more than once; only the first call wins.
func SetupLogging(level string) {
	loggerOnce.Do(func() {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      parseLevel(level),
			TimeFormat: time.RFC3339,
		}))
		slog.SetDefault(logger)
	})
}

// Logger returns the shared structured logger used across the service.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.RFC3339,
		}))
	})
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
