package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/keyxmakerx/esoterica/internal/apperror"
	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// --- Mock Repository ---

// mockCalendarRepo implements CalendarRepository for testing.
type mockCalendarRepo struct {
	createFn   func(ctx context.Context, cal *Calendar) error
	getByIDFn  func(ctx context.Context, id string) (*Calendar, error)
	listFn     func(ctx context.Context) ([]Calendar, error)
	updateFn   func(ctx context.Context, cal *Calendar) error
	deleteFn   func(ctx context.Context, id string) error
	setUnitsFn func(ctx context.Context, calendarID string, units []esoteric.Unit) error
	getUnitsFn func(ctx context.Context, calendarID string) ([]esoteric.Unit, error)
}

func (m *mockCalendarRepo) Create(ctx context.Context, cal *Calendar) error {
	if m.createFn != nil {
		return m.createFn(ctx, cal)
	}
	return nil
}

func (m *mockCalendarRepo) GetByID(ctx context.Context, id string) (*Calendar, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCalendarRepo) List(ctx context.Context) ([]Calendar, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockCalendarRepo) Update(ctx context.Context, cal *Calendar) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, cal)
	}
	return nil
}

func (m *mockCalendarRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCalendarRepo) SetUnits(ctx context.Context, calendarID string, units []esoteric.Unit) error {
	if m.setUnitsFn != nil {
		return m.setUnitsFn(ctx, calendarID, units)
	}
	return nil
}

func (m *mockCalendarRepo) GetUnits(ctx context.Context, calendarID string) ([]esoteric.Unit, error) {
	if m.getUnitsFn != nil {
		return m.getUnitsFn(ctx, calendarID)
	}
	return nil, nil
}

// memoryRepo returns a mock whose functions share an in-memory store, for
// tests that create a calendar and then query it.
func memoryRepo() *mockCalendarRepo {
	var mu sync.Mutex
	cals := make(map[string]Calendar)
	units := make(map[string][]esoteric.Unit)

	return &mockCalendarRepo{
		createFn: func(_ context.Context, cal *Calendar) error {
			mu.Lock()
			defer mu.Unlock()
			cals[cal.ID] = *cal
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*Calendar, error) {
			mu.Lock()
			defer mu.Unlock()
			cal, ok := cals[id]
			if !ok {
				return nil, nil
			}
			return &cal, nil
		},
		listFn: func(context.Context) ([]Calendar, error) {
			mu.Lock()
			defer mu.Unlock()
			var out []Calendar
			for _, cal := range cals {
				out = append(out, cal)
			}
			return out, nil
		},
		updateFn: func(_ context.Context, cal *Calendar) error {
			mu.Lock()
			defer mu.Unlock()
			cals[cal.ID] = *cal
			return nil
		},
		deleteFn: func(_ context.Context, id string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(cals, id)
			delete(units, id)
			return nil
		},
		setUnitsFn: func(_ context.Context, id string, us []esoteric.Unit) error {
			mu.Lock()
			defer mu.Unlock()
			units[id] = us
			return nil
		},
		getUnitsFn: func(_ context.Context, id string) ([]esoteric.Unit, error) {
			mu.Lock()
			defer mu.Unlock()
			return units[id], nil
		},
	}
}

// --- Mock Cache ---

// mockCache is an in-memory DefinitionCache that counts calls.
type mockCache struct {
	entries     map[string]*Calendar
	getErr      error
	gets        int
	sets        int
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*Calendar)}
}

func (m *mockCache) Get(_ context.Context, id string) (*Calendar, error) {
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[id], nil
}

func (m *mockCache) Set(_ context.Context, cal *Calendar) error {
	m.sets++
	m.entries[cal.ID] = cal
	return nil
}

func (m *mockCache) Invalidate(_ context.Context, id string) error {
	m.invalidated = append(m.invalidated, id)
	delete(m.entries, id)
	return nil
}

// --- Test Helpers ---

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// tinyDefinition is a small calendar: a day is 2 hours of 1 minute of 10
// seconds (20 seconds), months A and B last 2 and 3 days, so a regular year
// is 100 seconds. Month B of year 1 starts at 140.
func tinyDefinition() SimpleDefinition {
	return SimpleDefinition{
		Name:             "Tiny",
		HoursPerDay:      2,
		MinutesPerHour:   1,
		SecondsPerMinute: 10,
		Months: []SimpleMonth{
			{Name: "A", Days: 2},
			{Name: "B", Days: 3},
		},
		Weekdays: []string{"Sun", "Mon"},
	}
}

func tinyUnits(t *testing.T) []esoteric.Unit {
	t.Helper()
	units, err := BuildUnits(tinyDefinition())
	if err != nil {
		t.Fatalf("building tiny calendar: %v", err)
	}
	return units
}

// tinyFields are the fields of absolute timestamp 150 in the tiny calendar.
func tinyFields() map[string]esoteric.FieldValue {
	return map[string]esoteric.FieldValue{
		UnitYear:   {Value: 1, FormatShorthand: "y"},
		"month-2":  {Value: 1, FormatShorthand: "m"},
		UnitDay:    {Value: 0, FormatShorthand: "d"},
		UnitHour:   {Value: 1, FormatShorthand: "h"},
		UnitMinute: {Value: 0, FormatShorthand: "i"},
		UnitSecond: {Value: 0, FormatShorthand: "s"},
	}
}

// storedService returns a service holding the tiny calendar under id
// "cal-1" with the given origin time.
func storedService(t *testing.T, origin int64) (CalendarService, *mockCalendarRepo) {
	t.Helper()
	repo := memoryRepo()
	ctx := context.Background()
	if err := repo.Create(ctx, &Calendar{ID: "cal-1", Name: "Tiny", OriginTime: origin}); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetUnits(ctx, "cal-1", normalizeUnits(tinyUnits(t))); err != nil {
		t.Fatal(err)
	}
	return NewCalendarService(repo, nil), repo
}

func esotericDate(cal *Calendar, ts int64) esoteric.Date {
	return esoteric.New(esoteric.NewCalendar(cal.World()), ts)
}
