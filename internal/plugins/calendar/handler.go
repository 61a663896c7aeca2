package calendar

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// defaultMaxDocumentSize caps uploaded definition documents.
const defaultMaxDocumentSize = 1 << 20

// Handler processes HTTP requests for stored calendars.
type Handler struct {
	svc             CalendarService
	maxDocumentSize int64
}

// NewHandler creates a new calendar Handler. maxDocumentSize limits import
// bodies; zero selects the default.
func NewHandler(svc CalendarService, maxDocumentSize int64) *Handler {
	if maxDocumentSize <= 0 {
		maxDocumentSize = defaultMaxDocumentSize
	}
	return &Handler{svc: svc, maxDocumentSize: maxDocumentSize}
}

// ListCalendarsAPI returns all calendars.
// GET /api/v1/calendars
func (h *Handler) ListCalendarsAPI(c echo.Context) error {
	cals, err := h.svc.ListCalendars(c.Request().Context())
	if err != nil {
		return err
	}
	if cals == nil {
		cals = []Calendar{}
	}
	return c.JSON(http.StatusOK, cals)
}

// CreateCalendarAPI creates a calendar from settings plus a unit graph.
// POST /api/v1/calendars
func (h *Handler) CreateCalendarAPI(c echo.Context) error {
	var req CreateCalendarInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	cal, err := h.svc.CreateCalendar(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cal)
}

// GetCalendarAPI returns a calendar with its units.
// GET /api/v1/calendars/:id
func (h *Handler) GetCalendarAPI(c echo.Context) error {
	cal, err := h.svc.GetCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cal)
}

// UpdateCalendarAPI updates calendar settings.
// PUT /api/v1/calendars/:id
func (h *Handler) UpdateCalendarAPI(c echo.Context) error {
	var req UpdateCalendarInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.svc.UpdateCalendar(c.Request().Context(), c.Param("id"), req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteCalendarAPI removes a calendar.
// DELETE /api/v1/calendars/:id
func (h *Handler) DeleteCalendarAPI(c echo.Context) error {
	if err := h.svc.DeleteCalendar(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateUnitsAPI replaces the unit graph.
// PUT /api/v1/calendars/:id/units
func (h *Handler) UpdateUnitsAPI(c echo.Context) error {
	var units []esoteric.Unit
	if err := c.Bind(&units); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.svc.SetUnits(c.Request().Context(), c.Param("id"), units); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCalendarAPI returns the calendar as a downloadable document.
// GET /api/v1/calendars/:id/export?format=json|yaml|toml
func (h *Handler) ExportCalendarAPI(c echo.Context) error {
	cal, err := h.svc.GetCalendar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	enc := Encoding(c.QueryParam("format"))
	if enc == "" {
		enc = EncodingJSON
	}
	data, err := Encode(BuildExport(cal), enc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json, yaml or toml")
	}

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="calendar-%s.%s"`, cal.ID, enc))
	return c.Blob(http.StatusOK, enc.ContentType(), data)
}

// ImportCalendarAPI creates a calendar from an uploaded definition document.
// Accepts native and simple documents as JSON, YAML or TOML.
// POST /api/v1/calendars/import?preview=true
func (h *Handler) ImportCalendarAPI(c echo.Context) error {
	data, hint, err := h.readDocument(c)
	if err != nil {
		return err
	}

	result, err := DetectAndParse(data, hint)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Preview mode returns what would be imported without storing it.
	if c.QueryParam("preview") == "true" {
		return c.JSON(http.StatusOK, result)
	}

	cal, err := h.svc.CreateCalendar(c.Request().Context(), result.Document.Input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"format":   result.Format,
		"encoding": result.Encoding,
		"calendar": cal,
	})
}

// BuildCalendarAPI creates a calendar from a simple month/weekday definition.
// POST /api/v1/calendars/build
func (h *Handler) BuildCalendarAPI(c echo.Context) error {
	var def SimpleDefinition
	if err := c.Bind(&def); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	doc, err := BuildDocument(def)
	if err != nil {
		return err
	}
	cal, err := h.svc.CreateCalendar(c.Request().Context(), doc.Input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cal)
}

// readDocument reads an uploaded file (multipart) or the raw body, capped at
// maxDocumentSize. The returned hint is the file name or content type.
func (h *Handler) readDocument(c echo.Context) ([]byte, string, error) {
	var (
		src  io.Reader
		hint string
	)
	if file, err := c.FormFile("file"); err == nil {
		f, openErr := file.Open()
		if openErr != nil {
			return nil, "", echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
		}
		defer f.Close()
		src, hint = f, file.Filename
	} else {
		src, hint = c.Request().Body, c.Request().Header.Get(echo.HeaderContentType)
	}
	if format := c.QueryParam("format"); format != "" {
		hint = format
	}

	data, err := io.ReadAll(io.LimitReader(src, h.maxDocumentSize+1))
	if err != nil || len(data) == 0 {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "no file uploaded and no document body")
	}
	if int64(len(data)) > h.maxDocumentSize {
		return nil, "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document too large")
	}
	return data, hint, nil
}

// --- Engine queries ---

// ParseAPI returns the fields of a timestamp.
// GET /api/v1/calendars/:id/parse?t=
func (h *Handler) ParseAPI(c echo.Context) error {
	ts, err := timestampParam(c)
	if err != nil {
		return err
	}
	result, err := h.svc.Parse(c.Request().Context(), c.Param("id"), ts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// FormatAPI renders a timestamp.
// GET /api/v1/calendars/:id/format?t=&template=
func (h *Handler) FormatAPI(c echo.Context) error {
	ts, err := timestampParam(c)
	if err != nil {
		return err
	}
	result, err := h.svc.Format(c.Request().Context(), c.Param("id"), ts, c.QueryParam("template"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// StepAPI moves a timestamp.
// POST /api/v1/calendars/:id/step
func (h *Handler) StepAPI(c echo.Context) error {
	var req StepRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	result, err := h.svc.Step(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// FloorAPI truncates a timestamp.
// POST /api/v1/calendars/:id/floor
func (h *Handler) FloorAPI(c echo.Context) error {
	var req UnitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	result, err := h.svc.Floor(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// RoundAPI rounds a timestamp.
// POST /api/v1/calendars/:id/round
func (h *Handler) RoundAPI(c echo.Context) error {
	var req UnitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	result, err := h.svc.Round(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// ResolveAPI converts field values into a timestamp.
// POST /api/v1/calendars/:id/resolve
func (h *Handler) ResolveAPI(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	result, err := h.svc.Resolve(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// ActiveParentAPI reports the parent instance containing a unit.
// GET /api/v1/calendars/:id/active-parent?t=&unit=
func (h *Handler) ActiveParentAPI(c echo.Context) error {
	ts, err := timestampParam(c)
	if err != nil {
		return err
	}
	result, err := h.svc.ActiveParent(c.Request().Context(), c.Param("id"), c.QueryParam("unit"), ts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// timestampParam reads the t query parameter; missing means zero.
func timestampParam(c echo.Context) (int64, error) {
	raw := c.QueryParam("t")
	if raw == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "t must be an integer timestamp")
	}
	return ts, nil
}
