package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

// Logger writes one record per request to the default slog logger. Liveness
// polls are skipped; 4xx log at warn and 5xx at error.
func Logger() gin.HandlerFunc {
	return sloggin.NewWithConfig(slog.Default(), sloggin.Config{
		DefaultLevel:     slog.LevelDebug,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithUserAgent:    true,
		Filters: []sloggin.Filter{
			sloggin.IgnorePathPrefix("/health"),
		},
	})
}
