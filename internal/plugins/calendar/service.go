package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/keyxmakerx/esoterica/internal/apperror"
	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/sanitize"
)

// CalendarService defines business logic for stored calendars.
type CalendarService interface {
	// Calendar CRUD.
	CreateCalendar(ctx context.Context, input CreateCalendarInput) (*Calendar, error)
	GetCalendar(ctx context.Context, calendarID string) (*Calendar, error)
	ListCalendars(ctx context.Context) ([]Calendar, error)
	UpdateCalendar(ctx context.Context, calendarID string, input UpdateCalendarInput) error
	DeleteCalendar(ctx context.Context, calendarID string) error

	// Unit graph bulk update (replace all).
	SetUnits(ctx context.Context, calendarID string, units []esoteric.Unit) error

	// Engine queries. Timestamps are raw (before OriginTime is applied).
	Parse(ctx context.Context, calendarID string, timestamp int64) (*ParseResult, error)
	Format(ctx context.Context, calendarID string, timestamp int64, template string) (*FormatResult, error)
	Step(ctx context.Context, calendarID string, req StepRequest) (*TimestampResult, error)
	Floor(ctx context.Context, calendarID string, req UnitRequest) (*TimestampResult, error)
	Round(ctx context.Context, calendarID string, req UnitRequest) (*TimestampResult, error)
	Resolve(ctx context.Context, calendarID string, req ResolveRequest) (*TimestampResult, error)
	ActiveParent(ctx context.Context, calendarID, unitID string, timestamp int64) (*ActiveParentResult, error)
}

// calendarService is the default CalendarService implementation.
type calendarService struct {
	repo  CalendarRepository
	cache DefinitionCache
}

// NewCalendarService creates a CalendarService backed by the given
// repository. A nil cache disables definition caching.
func NewCalendarService(repo CalendarRepository, cache DefinitionCache) CalendarService {
	if cache == nil {
		cache = noopCache{}
	}
	return &calendarService{repo: repo, cache: cache}
}

// CreateCalendar stores a new calendar with its unit graph.
func (s *calendarService) CreateCalendar(ctx context.Context, input CreateCalendarInput) (*Calendar, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	units := normalizeUnits(input.Units)
	if err := ValidateUnits(units); err != nil {
		return nil, err
	}

	cal := &Calendar{
		ID:          uuid.NewString(),
		Name:        name,
		Description: cleanDescription(input.Description),
		OriginTime:  input.OriginTime,
	}
	if err := s.repo.Create(ctx, cal); err != nil {
		return nil, fmt.Errorf("create calendar: %w", err)
	}
	if err := s.repo.SetUnits(ctx, cal.ID, units); err != nil {
		return nil, fmt.Errorf("set units: %w", err)
	}
	cal.Units = units

	slog.Info("calendar created",
		slog.String("calendar_id", cal.ID),
		slog.Int("units", len(units)),
	)
	return cal, nil
}

// GetCalendar returns a calendar with its unit graph, served from the cache
// when possible.
func (s *calendarService) GetCalendar(ctx context.Context, calendarID string) (*Calendar, error) {
	cached, err := s.cache.Get(ctx, calendarID)
	if err != nil {
		slog.Warn("definition cache read failed",
			slog.String("calendar_id", calendarID),
			slog.Any("error", err),
		)
	}
	if cached != nil {
		return cached, nil
	}

	cal, err := s.repo.GetByID(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	if cal == nil {
		return nil, apperror.NewNotFound("calendar not found")
	}
	if cal.Units, err = s.repo.GetUnits(ctx, cal.ID); err != nil {
		return nil, fmt.Errorf("get units: %w", err)
	}

	slog.Debug("definition cache miss", slog.String("calendar_id", calendarID))
	if err := s.cache.Set(ctx, cal); err != nil {
		slog.Warn("definition cache write failed",
			slog.String("calendar_id", calendarID),
			slog.Any("error", err),
		)
	}
	return cal, nil
}

// ListCalendars returns every calendar without units.
func (s *calendarService) ListCalendars(ctx context.Context) ([]Calendar, error) {
	cals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return cals, nil
}

// UpdateCalendar updates the calendar name, description and origin time.
func (s *calendarService) UpdateCalendar(ctx context.Context, calendarID string, input UpdateCalendarInput) error {
	name, err := validateName(input.Name)
	if err != nil {
		return err
	}

	cal, err := s.repo.GetByID(ctx, calendarID)
	if err != nil {
		return fmt.Errorf("get calendar: %w", err)
	}
	if cal == nil {
		return apperror.NewNotFound("calendar not found")
	}

	cal.Name = name
	cal.Description = cleanDescription(input.Description)
	cal.OriginTime = input.OriginTime

	if err := s.repo.Update(ctx, cal); err != nil {
		return fmt.Errorf("update calendar: %w", err)
	}
	s.invalidate(ctx, calendarID)
	return nil
}

// DeleteCalendar removes a calendar and all its units.
func (s *calendarService) DeleteCalendar(ctx context.Context, calendarID string) error {
	if err := s.repo.Delete(ctx, calendarID); err != nil {
		return fmt.Errorf("delete calendar: %w", err)
	}
	s.invalidate(ctx, calendarID)
	return nil
}

// SetUnits replaces the unit graph after normalizing and validating it.
func (s *calendarService) SetUnits(ctx context.Context, calendarID string, units []esoteric.Unit) error {
	cal, err := s.repo.GetByID(ctx, calendarID)
	if err != nil {
		return fmt.Errorf("get calendar: %w", err)
	}
	if cal == nil {
		return apperror.NewNotFound("calendar not found")
	}

	units = normalizeUnits(units)
	if err := ValidateUnits(units); err != nil {
		return err
	}
	if err := s.repo.SetUnits(ctx, calendarID, units); err != nil {
		return fmt.Errorf("set units: %w", err)
	}
	s.invalidate(ctx, calendarID)
	return nil
}

// invalidate drops a cached definition. Failures are logged, not returned:
// the write already succeeded and the entry expires on its own.
func (s *calendarService) invalidate(ctx context.Context, calendarID string) {
	if err := s.cache.Invalidate(ctx, calendarID); err != nil {
		slog.Warn("definition cache invalidation failed",
			slog.String("calendar_id", calendarID),
			slog.Any("error", err),
		)
		return
	}
	slog.Debug("definition cache invalidated", slog.String("calendar_id", calendarID))
}

// --- Engine queries ---

// date loads a calendar and positions it at a raw timestamp.
func (s *calendarService) date(ctx context.Context, calendarID string, timestamp int64) (esoteric.Date, error) {
	cal, err := s.GetCalendar(ctx, calendarID)
	if err != nil {
		return esoteric.Date{}, err
	}
	return esoteric.New(esoteric.NewCalendar(cal.World()), timestamp), nil
}

// Parse returns every field of a raw timestamp.
func (s *calendarService) Parse(ctx context.Context, calendarID string, timestamp int64) (*ParseResult, error) {
	d, err := s.date(ctx, calendarID, timestamp)
	if err != nil {
		return nil, err
	}
	return &ParseResult{Timestamp: timestamp, Fields: d.Parsed().Fields()}, nil
}

// Format renders a raw timestamp with a template.
func (s *calendarService) Format(ctx context.Context, calendarID string, timestamp int64, template string) (*FormatResult, error) {
	d, err := s.date(ctx, calendarID, timestamp)
	if err != nil {
		return nil, err
	}
	return &FormatResult{Timestamp: timestamp, Template: template, Text: d.Format(template)}, nil
}

// Step moves a raw timestamp by a number of unit instances.
func (s *calendarService) Step(ctx context.Context, calendarID string, req StepRequest) (*TimestampResult, error) {
	if req.Unit == "" {
		return nil, apperror.NewValidation("unit is required")
	}
	d, err := s.date(ctx, calendarID, req.Timestamp)
	if err != nil {
		return nil, err
	}
	next, err := d.Step(req.Unit, req.Amount)
	if err != nil {
		return nil, engineError(err)
	}
	return &TimestampResult{Timestamp: next.Timestamp()}, nil
}

// Floor truncates a raw timestamp to the start of a unit instance.
func (s *calendarService) Floor(ctx context.Context, calendarID string, req UnitRequest) (*TimestampResult, error) {
	if req.Unit == "" {
		return nil, apperror.NewValidation("unit is required")
	}
	d, err := s.date(ctx, calendarID, req.Timestamp)
	if err != nil {
		return nil, err
	}
	floored, err := d.Floor(req.Unit)
	if err != nil {
		return nil, engineError(err)
	}
	return &TimestampResult{Timestamp: floored.Timestamp()}, nil
}

// Round moves a raw timestamp to the nearest unit boundary.
func (s *calendarService) Round(ctx context.Context, calendarID string, req UnitRequest) (*TimestampResult, error) {
	if req.Unit == "" {
		return nil, apperror.NewValidation("unit is required")
	}
	d, err := s.date(ctx, calendarID, req.Timestamp)
	if err != nil {
		return nil, err
	}
	rounded, err := d.Round(req.Unit)
	if err != nil {
		return nil, engineError(err)
	}
	return &TimestampResult{Timestamp: rounded.Timestamp()}, nil
}

// Resolve turns field values back into a raw timestamp.
func (s *calendarService) Resolve(ctx context.Context, calendarID string, req ResolveRequest) (*TimestampResult, error) {
	cal, err := s.GetCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	engine := esoteric.NewCalendar(cal.World())
	for id := range req.Fields {
		if _, ok := engine.Unit(id); !ok {
			return nil, apperror.NewNotFound(fmt.Sprintf("unit %q not found in calendar", id))
		}
	}
	abs := engine.Resolve(req.Fields)
	return &TimestampResult{Timestamp: abs - cal.OriginTime}, nil
}

// ActiveParent reports which parent instance contains a unit.
func (s *calendarService) ActiveParent(ctx context.Context, calendarID, unitID string, timestamp int64) (*ActiveParentResult, error) {
	if unitID == "" {
		return nil, apperror.NewValidation("unit is required")
	}
	d, err := s.date(ctx, calendarID, timestamp)
	if err != nil {
		return nil, err
	}
	ap, ok, err := d.ActiveParent(unitID)
	if err != nil {
		return nil, engineError(err)
	}
	result := &ActiveParentResult{UnitID: unitID}
	if ok {
		result.ParentUnitID = ap.Parent.ID
		result.CycleStart = ap.CycleStart
	}
	return result, nil
}

// engineError maps engine errors onto client-facing errors.
func engineError(err error) error {
	switch {
	case errors.Is(err, esoteric.ErrUnknownUnit), errors.Is(err, esoteric.ErrUnreachableUnit):
		return apperror.NewNotFound(err.Error()).Wrap(err)
	default:
		return apperror.NewInternal(err)
	}
}

// validateName sanitizes and checks a calendar name.
func validateName(name string) (string, error) {
	name = sanitize.Text(name)
	if name == "" {
		return "", apperror.NewValidation("calendar name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", apperror.NewValidation(fmt.Sprintf("calendar name must be at most %d characters", maxNameLength))
	}
	return name, nil
}

// cleanDescription sanitizes an optional description; blank becomes nil.
func cleanDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	cleaned := sanitize.Text(*desc)
	if strings.TrimSpace(cleaned) == "" {
		return nil
	}
	return &cleaned
}
