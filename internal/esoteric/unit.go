// Package esoteric converts between a single linear integer timestamp and
// the structured fields of a user-defined calendar. A calendar is a graph of
// units (second, hour, month, leap cycle, ...) where each unit is made of
// ordered, repeated child units. Units may have several parents and may be
// hidden: hidden units consume time but never show up in formatted output,
// and their slots fold into the nearest visible ancestor.
//
// Everything in this package is pure. A Calendar is immutable once built and
// may be shared between goroutines.
package esoteric

import (
	"errors"
	"fmt"
)

// FormatMode controls how a unit's value is rendered by the formatter.
type FormatMode string

const (
	// ModeNumeric renders the zero-based value.
	ModeNumeric FormatMode = "numeric"
	// ModeNumericOneIndexed renders value+1 for non-negative values.
	ModeNumericOneIndexed FormatMode = "numeric_one_indexed"
	// ModeName renders the unit's display name followed by its value.
	ModeName FormatMode = "name"
	// ModeNameOneIndexed is ModeName with a one-based value.
	ModeNameOneIndexed FormatMode = "name_one_indexed"
	// ModeHidden marks a structural unit that is never rendered.
	ModeHidden FormatMode = "hidden"
)

// Valid reports whether m is one of the known format modes.
func (m FormatMode) Valid() bool {
	switch m {
	case ModeNumeric, ModeNumericOneIndexed, ModeName, ModeNameOneIndexed, ModeHidden:
		return true
	}
	return false
}

// Errors returned when a caller asks for a unit the calendar cannot serve.
var (
	// ErrUnknownUnit means the unit id is not part of the calendar.
	ErrUnknownUnit = errors.New("unit not found in calendar")
	// ErrUnreachableUnit means no unit of the requested bucket contains the
	// timestamp (e.g. asking for an hour while inside a break slot).
	ErrUnreachableUnit = errors.New("unit not reachable at timestamp")
)

func unknownUnit(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownUnit, id)
}

func unreachableUnit(id string, abs int64) error {
	return fmt.Errorf("%w: %q at %d", ErrUnreachableUnit, id, abs)
}

// ChildRelation places Repeats consecutive slots of a child unit inside its
// parent. Relations are ordered left to right in time by Position.
type ChildRelation struct {
	ChildUnitID string  `json:"child_unit_id" yaml:"child_unit_id" toml:"child_unit_id"`
	Repeats     int64   `json:"repeats" yaml:"repeats" toml:"repeats"`
	Position    int     `json:"position" yaml:"position" toml:"position"`
	Label       *string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
}

// ParentRelation is the inverse view of a ChildRelation.
type ParentRelation struct {
	ParentUnitID string `json:"parent_unit_id" yaml:"parent_unit_id" toml:"parent_unit_id"`
	Repeats      int64  `json:"repeats" yaml:"repeats" toml:"repeats"`
}

// Unit is a named, fixed-length slice of calendar time.
type Unit struct {
	ID string `json:"id" yaml:"id" toml:"id"`
	// Name is the unit's own name, e.g. "LeapYear".
	Name string `json:"name" yaml:"name" toml:"name"`
	// DisplayName is the bucket shared by interchangeable units, e.g. both
	// "RegularYear" and "LeapYear" use "Year".
	DisplayName      string  `json:"display_name" yaml:"display_name" toml:"display_name"`
	DisplayNameShort *string `json:"display_name_short,omitempty" yaml:"display_name_short,omitempty" toml:"display_name_short,omitempty"`
	// Duration is measured in base timestamp units. For units with children
	// it equals the sum of childDuration × repeats.
	Duration int64 `json:"duration" yaml:"duration" toml:"duration"`
	// FormatShorthand is the single template character for this unit, or "".
	FormatShorthand string           `json:"format_shorthand,omitempty" yaml:"format_shorthand,omitempty" toml:"format_shorthand,omitempty"`
	FormatMode      FormatMode       `json:"format_mode" yaml:"format_mode" toml:"format_mode"`
	Position        int              `json:"position" yaml:"position" toml:"position"`
	Children        []ChildRelation  `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
	Parents         []ParentRelation `json:"parents,omitempty" yaml:"parents,omitempty" toml:"parents,omitempty"`
}

// IsHidden reports whether the unit is a structural, never-rendered unit.
func (u *Unit) IsHidden() bool {
	return u.FormatMode == ModeHidden
}

// ShortName returns DisplayNameShort, falling back to DisplayName.
func (u *Unit) ShortName() string {
	if u.DisplayNameShort != nil && *u.DisplayNameShort != "" {
		return *u.DisplayNameShort
	}
	return u.bucketName()
}

func (u *Unit) bucketName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Name
}

// WorldCalendar is a complete calendar definition. OriginTime shifts raw
// timestamps into the absolute space the hierarchy is laid out in:
// absolute = raw + OriginTime.
type WorldCalendar struct {
	Units      []Unit `json:"units" yaml:"units" toml:"units"`
	OriginTime int64  `json:"origin_time" yaml:"origin_time" toml:"origin_time"`
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
