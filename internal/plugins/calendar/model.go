// Package calendar stores esoteric calendar definitions and answers engine
// queries (parse, format, step, floor, round, resolve) against them. A stored
// calendar is a name plus an origin time plus a unit graph; the graph itself
// is evaluated by the esoteric package.
package calendar

import (
	"time"

	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// Calendar is a stored calendar definition.
type Calendar struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OriginTime  int64     `json:"origin_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Eager-loaded unit graph (populated by service, not by every query).
	Units []esoteric.Unit `json:"units,omitempty"`
}

// World returns the definition in the shape the engine evaluates.
func (c *Calendar) World() esoteric.WorldCalendar {
	return esoteric.WorldCalendar{Units: c.Units, OriginTime: c.OriginTime}
}

// CreateCalendarInput is the validated input for creating a calendar.
type CreateCalendarInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	OriginTime  int64           `json:"origin_time"`
	Units       []esoteric.Unit `json:"units"`
}

// UpdateCalendarInput changes calendar settings. Units are replaced
// separately through SetUnits.
type UpdateCalendarInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	OriginTime  int64   `json:"origin_time"`
}

// --- Engine query shapes ---

// StepRequest moves a timestamp by Amount instances of Unit.
type StepRequest struct {
	Timestamp int64  `json:"timestamp"`
	Unit      string `json:"unit"`
	Amount    int64  `json:"amount"`
}

// UnitRequest names a unit at a timestamp (floor, round).
type UnitRequest struct {
	Timestamp int64  `json:"timestamp"`
	Unit      string `json:"unit"`
}

// ResolveRequest carries field values to turn back into a timestamp.
type ResolveRequest struct {
	Fields map[string]esoteric.FieldValue `json:"fields"`
}

// TimestampResult is returned by step, floor, round and resolve.
type TimestampResult struct {
	Timestamp int64 `json:"timestamp"`
}

// ParseResult lists the fields of a raw timestamp.
type ParseResult struct {
	Timestamp int64            `json:"timestamp"`
	Fields    []esoteric.Field `json:"fields"`
}

// FormatResult is a rendered timestamp.
type FormatResult struct {
	Timestamp int64  `json:"timestamp"`
	Template  string `json:"template"`
	Text      string `json:"text"`
}

// ActiveParentResult reports the parent instance containing a unit.
// ParentUnitID is empty when the unit is a root.
type ActiveParentResult struct {
	UnitID       string `json:"unit_id"`
	ParentUnitID string `json:"parent_unit_id,omitempty"`
	CycleStart   int64  `json:"cycle_start"`
}
