package calendar

import (
	"fmt"

	"github.com/keyxmakerx/esoterica/internal/apperror"
	"github.com/keyxmakerx/esoterica/internal/esoteric"
)

// SimpleMonth is one month of a simple definition.
type SimpleMonth struct {
	Name         string `json:"name" yaml:"name" toml:"name"`
	Days         int64  `json:"days" yaml:"days" toml:"days"`
	LeapYearDays int64  `json:"leap_year_days" yaml:"leap_year_days" toml:"leap_year_days"`
}

// SimpleDefinition describes a conventional calendar: a clock, a list of
// months, a weekday cycle and a single leap rule where year y is leap when
// (y - LeapYearOffset) is a multiple of LeapYearEvery.
type SimpleDefinition struct {
	Name             string        `json:"name" yaml:"name" toml:"name"`
	Description      *string       `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	OriginTime       int64         `json:"origin_time" yaml:"origin_time" toml:"origin_time"`
	Months           []SimpleMonth `json:"months" yaml:"months" toml:"months"`
	Weekdays         []string      `json:"weekdays" yaml:"weekdays" toml:"weekdays"`
	HoursPerDay      int64         `json:"hours_per_day" yaml:"hours_per_day" toml:"hours_per_day"`
	MinutesPerHour   int64         `json:"minutes_per_hour" yaml:"minutes_per_hour" toml:"minutes_per_hour"`
	SecondsPerMinute int64         `json:"seconds_per_minute" yaml:"seconds_per_minute" toml:"seconds_per_minute"`
	LeapYearEvery    int64         `json:"leap_year_every" yaml:"leap_year_every" toml:"leap_year_every"`
	LeapYearOffset   int64         `json:"leap_year_offset" yaml:"leap_year_offset" toml:"leap_year_offset"`
}

// Unit ids produced by BuildUnits.
const (
	UnitSecond    = "second"
	UnitMinute    = "minute"
	UnitHour      = "hour"
	UnitDay       = "day"
	UnitYear      = "year"
	UnitLeapYear  = "leap-year"
	UnitLeapCycle = "leap-cycle"
	UnitWeekday   = "weekday"
	UnitWeek      = "week"
)

// unitBuilder appends units with increasing positions.
type unitBuilder struct {
	units []esoteric.Unit
	dur   map[string]int64
}

func (b *unitBuilder) add(u esoteric.Unit) {
	u.Position = len(b.units)
	if len(u.Children) > 0 {
		u.Duration = 0
		for i := range u.Children {
			u.Children[i].Position = i
			u.Duration += b.dur[u.Children[i].ChildUnitID] * u.Children[i].Repeats
		}
	}
	b.dur[u.ID] = u.Duration
	b.units = append(b.units, u)
}

func label(s string) *string {
	return &s
}

// BuildUnits converts a simple definition into a unit graph with one second
// as the base timestamp unit. Year values parsed from the graph are the
// calendar's year numbers, counted from year 0 at timestamp 0.
func BuildUnits(def SimpleDefinition) ([]esoteric.Unit, error) {
	if len(def.Months) == 0 {
		return nil, apperror.NewValidation("calendar must have at least one month")
	}
	hours, minutes, seconds := def.HoursPerDay, def.MinutesPerHour, def.SecondsPerMinute
	if hours == 0 {
		hours = 24
	}
	if minutes == 0 {
		minutes = 60
	}
	if seconds == 0 {
		seconds = 60
	}
	if hours < 0 || minutes < 0 || seconds < 0 {
		return nil, apperror.NewValidation("clock lengths cannot be negative")
	}
	if def.LeapYearEvery < 0 {
		return nil, apperror.NewValidation("leap_year_every cannot be negative")
	}

	b := &unitBuilder{dur: make(map[string]int64)}
	b.add(esoteric.Unit{ID: UnitSecond, Name: "Second", DisplayName: "Second", Duration: 1,
		FormatShorthand: "s", FormatMode: esoteric.ModeNumeric})
	b.add(esoteric.Unit{ID: UnitMinute, Name: "Minute", DisplayName: "Minute",
		FormatShorthand: "i", FormatMode: esoteric.ModeNumeric,
		Children: []esoteric.ChildRelation{{ChildUnitID: UnitSecond, Repeats: seconds}}})
	b.add(esoteric.Unit{ID: UnitHour, Name: "Hour", DisplayName: "Hour",
		FormatShorthand: "h", FormatMode: esoteric.ModeNumeric,
		Children: []esoteric.ChildRelation{{ChildUnitID: UnitMinute, Repeats: minutes}}})
	b.add(esoteric.Unit{ID: UnitDay, Name: "Day", DisplayName: "Day",
		FormatShorthand: "d", FormatMode: esoteric.ModeNumericOneIndexed,
		Children: []esoteric.ChildRelation{{ChildUnitID: UnitHour, Repeats: hours}}})

	hasLeap := false
	regular := make([]esoteric.ChildRelation, len(def.Months))
	leap := make([]esoteric.ChildRelation, len(def.Months))
	for i, m := range def.Months {
		if m.Name == "" {
			return nil, apperror.NewValidation(fmt.Sprintf("month %d: name is required", i+1))
		}
		if m.Days < 1 {
			return nil, apperror.NewValidation(fmt.Sprintf("month %q: days must be positive", m.Name))
		}
		if m.LeapYearDays < 0 {
			return nil, apperror.NewValidation(fmt.Sprintf("month %q: leap_year_days cannot be negative", m.Name))
		}

		id := fmt.Sprintf("month-%d", i+1)
		b.add(esoteric.Unit{ID: id, Name: m.Name, DisplayName: "Month",
			FormatShorthand: "m", FormatMode: esoteric.ModeNumericOneIndexed,
			Children: []esoteric.ChildRelation{{ChildUnitID: UnitDay, Repeats: m.Days}}})
		regular[i] = esoteric.ChildRelation{ChildUnitID: id, Repeats: 1, Label: label(m.Name)}
		leap[i] = regular[i]

		if m.LeapYearDays > 0 && def.LeapYearEvery > 0 {
			hasLeap = true
			leapID := id + "-leap"
			b.add(esoteric.Unit{ID: leapID, Name: m.Name + " (leap)", DisplayName: "Month",
				FormatShorthand: "m", FormatMode: esoteric.ModeNumericOneIndexed,
				Children: []esoteric.ChildRelation{{ChildUnitID: UnitDay, Repeats: m.Days + m.LeapYearDays}}})
			leap[i] = esoteric.ChildRelation{ChildUnitID: leapID, Repeats: 1, Label: label(m.Name)}
		}
	}

	b.add(esoteric.Unit{ID: UnitYear, Name: "RegularYear", DisplayName: "Year",
		FormatShorthand: "y", FormatMode: esoteric.ModeNumeric, Children: regular})

	if hasLeap {
		b.add(esoteric.Unit{ID: UnitLeapYear, Name: "LeapYear", DisplayName: "Year",
			FormatShorthand: "y", FormatMode: esoteric.ModeNumeric, Children: leap})

		// Rotate the cycle so the leap slot sits at index offset mod every.
		every := def.LeapYearEvery
		before := def.LeapYearOffset % every
		if before < 0 {
			before += every
		}
		var cycle []esoteric.ChildRelation
		if before > 0 {
			cycle = append(cycle, esoteric.ChildRelation{ChildUnitID: UnitYear, Repeats: before})
		}
		cycle = append(cycle, esoteric.ChildRelation{ChildUnitID: UnitLeapYear, Repeats: 1})
		if after := every - 1 - before; after > 0 {
			cycle = append(cycle, esoteric.ChildRelation{ChildUnitID: UnitYear, Repeats: after})
		}
		b.add(esoteric.Unit{ID: UnitLeapCycle, Name: "LeapCycle", DisplayName: "LeapCycle",
			FormatMode: esoteric.ModeHidden, Children: cycle})
	}

	if len(def.Weekdays) > 0 {
		b.add(esoteric.Unit{ID: UnitWeekday, Name: "Weekday", DisplayName: "Weekday",
			Duration: b.dur[UnitDay], FormatShorthand: "w", FormatMode: esoteric.ModeNumericOneIndexed})
		week := make([]esoteric.ChildRelation, len(def.Weekdays))
		for i, name := range def.Weekdays {
			if name == "" {
				return nil, apperror.NewValidation(fmt.Sprintf("weekday %d: name is required", i+1))
			}
			week[i] = esoteric.ChildRelation{ChildUnitID: UnitWeekday, Repeats: 1, Label: label(name)}
		}
		b.add(esoteric.Unit{ID: UnitWeek, Name: "Week", DisplayName: "Week",
			FormatMode: esoteric.ModeHidden, Children: week})
	}

	return withDerivedParents(b.units), nil
}

// BuildDocument converts a simple definition into a native document.
func BuildDocument(def SimpleDefinition) (*Document, error) {
	units, err := BuildUnits(def)
	if err != nil {
		return nil, err
	}
	name := def.Name
	if name == "" {
		name = "Imported Calendar"
	}
	return &Document{
		Format:  DocumentFormat,
		Version: DocumentVersion,
		Calendar: DocumentCalendar{
			Name:        name,
			Description: def.Description,
			OriginTime:  def.OriginTime,
			Units:       units,
		},
	}, nil
}
