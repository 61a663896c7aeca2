package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/esoterica/internal/middleware"
	"github.com/keyxmakerx/esoterica/internal/plugins/calendar"
)

// RegisterRoutes sets up all application routes: the health check at the
// root and the calendar API under /api/v1.
func (a *App) RegisterRoutes() {
	e := a.Echo

	e.GET("/healthz", a.healthz)

	// --- Calendar plugin ---
	var cache calendar.DefinitionCache
	if a.Redis != nil {
		cache = calendar.NewRedisCache(a.Redis, a.Config.Redis.CacheTTL)
	}
	calendarRepo := calendar.NewCalendarRepository(a.DB)
	calendarService := calendar.NewCalendarService(calendarRepo, cache)
	calendarHandler := calendar.NewHandler(calendarService, a.Config.MaxDefinitionSize)

	api := e.Group("/api/v1",
		middleware.RateLimit(a.ctx, a.Config.RateLimit.Requests, a.Config.RateLimit.Window),
	)
	calendar.RegisterRoutes(api, calendarHandler)
}

// healthz reports whether MariaDB and (when configured) Redis answer a ping.
// Used by Docker health monitoring.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK

	if err := a.DB.PingContext(ctx); err != nil {
		status["status"], status["database"] = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	if a.Redis != nil {
		status["cache"] = "ok"
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			// Queries still work from MariaDB without the cache.
			status["status"], status["cache"] = "degraded", "unreachable"
		}
	}
	return c.JSON(code, status)
}
