package calendar

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all calendar routes under /api/v1/calendars.
// Definition writes and engine queries share one group so rate limiting
// and logging apply uniformly.
func RegisterRoutes(g *echo.Group, h *Handler) {
	cg := g.Group("/calendars")

	// Definitions.
	cg.GET("", h.ListCalendarsAPI)
	cg.POST("", h.CreateCalendarAPI)
	cg.POST("/import", h.ImportCalendarAPI)
	cg.POST("/build", h.BuildCalendarAPI)
	cg.GET("/:id", h.GetCalendarAPI)
	cg.PUT("/:id", h.UpdateCalendarAPI)
	cg.DELETE("/:id", h.DeleteCalendarAPI)
	cg.PUT("/:id/units", h.UpdateUnitsAPI)
	cg.GET("/:id/export", h.ExportCalendarAPI)

	// Engine queries.
	cg.GET("/:id/parse", h.ParseAPI)
	cg.GET("/:id/format", h.FormatAPI)
	cg.POST("/:id/step", h.StepAPI)
	cg.POST("/:id/floor", h.FloorAPI)
	cg.POST("/:id/round", h.RoundAPI)
	cg.POST("/:id/resolve", h.ResolveAPI)
	cg.GET("/:id/active-parent", h.ActiveParentAPI)
}
