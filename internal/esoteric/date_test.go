package esoteric

import (
	"errors"
	"testing"
)

func TestDate_OriginTimeShiftsRawTimestamps(t *testing.T) {
	// Raw zero is the first minute of year 1.
	cal := gregorian().calendar(leapYear)
	d := New(cal, 0)

	year, err := d.Get("reg_year")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if year.Value != 1 {
		t.Errorf("expected year 1, got %d", year.Value)
	}

	floored, err := New(cal, 5000).Floor("reg_year")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if floored.Timestamp() != 0 {
		t.Errorf("expected raw floor 0, got %d", floored.Timestamp())
	}

	next, err := d.Next("reg_year")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Timestamp() != regularYear {
		t.Errorf("expected %d, got %d", regularYear, next.Timestamp())
	}
}

func TestDate_Immutable(t *testing.T) {
	cal := minuteClock().calendar(0)
	d := New(cal, 59)

	moved, err := d.Step("minute", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Timestamp() != 59 {
		t.Errorf("receiver changed to %d", d.Timestamp())
	}
	if moved.Timestamp() != 60 {
		t.Errorf("expected 60, got %d", moved.Timestamp())
	}
	if moved.Equal(d) {
		t.Error("expected distinct dates")
	}
	if !moved.Equal(New(cal, 60)) {
		t.Error("expected dates on the same calendar and timestamp to be equal")
	}
	if moved.Calendar() != cal {
		t.Error("expected the same calendar")
	}
}

func TestDate_RoundAndFormat(t *testing.T) {
	cal := secondsClock().calendar(0)

	rounded, err := New(cal, 19845).Round("hour")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rounded.Timestamp() != 18000 {
		t.Errorf("expected 18000, got %d", rounded.Timestamp())
	}
	if got := New(cal, 19845).Format("dd:hh:ii:ss"); got != "00:05:30:45" {
		t.Errorf("expected 00:05:30:45, got %q", got)
	}
	if n := New(cal, 19845).Parsed().Len(); n != 4 {
		t.Errorf("expected 4 fields, got %d", n)
	}
}

func TestDate_ActiveParentUsesRawTime(t *testing.T) {
	cal := minuteClock().calendar(1000)

	ap, ok, err := New(cal, 0).ActiveParent("minute")
	if err != nil || !ok {
		t.Fatalf("expected parent, got ok=%v err=%v", ok, err)
	}
	if ap.Parent.ID != "hour" || ap.CycleStart != -40 {
		t.Errorf("expected hour at -40, got %s at %d", ap.Parent.ID, ap.CycleStart)
	}
}

func TestDate_Errors(t *testing.T) {
	cal := breakDay().calendar(0)
	d := New(cal, 125)

	if _, err := d.Get("hour"); !errors.Is(err, ErrUnreachableUnit) {
		t.Errorf("expected ErrUnreachableUnit, got %v", err)
	}
	same, err := d.Step("century", 1)
	if !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
	if !same.Equal(d) {
		t.Error("expected the original date back on error")
	}
}

func TestFormatMode_Valid(t *testing.T) {
	for _, m := range []FormatMode{ModeNumeric, ModeNumericOneIndexed, ModeName, ModeNameOneIndexed, ModeHidden} {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if FormatMode("roman").Valid() {
		t.Error("expected unknown mode to be invalid")
	}
}

func TestNewCalendar_DerivesRootsAndBuckets(t *testing.T) {
	cal := withWeek(gregorian()).calendar(0)

	roots := cal.Roots()
	if len(roots) != 2 || roots[0].ID != "cycle400" || roots[1].ID != "week" {
		t.Fatalf("expected roots cycle400 and week, got %v", roots)
	}
	reg, _ := cal.Unit("reg_year")
	leap, _ := cal.Unit("leap_year")
	if cal.Bucket(reg) != cal.Bucket(leap) {
		t.Errorf("expected one bucket for both years, got %q and %q", cal.Bucket(reg), cal.Bucket(leap))
	}
}

func TestNewCalendar_NormalisesBuckets(t *testing.T) {
	// "Fête" composed and decomposed must land in one bucket.
	s := newUnitSet().
		leaf("a", "Fête", "a", ModeNumeric, 1).
		leaf("b", "Fe\u0302te", "b", ModeNumeric, 1)
	cal := s.calendar(0)

	a, _ := cal.Unit("a")
	b, _ := cal.Unit("b")
	if cal.Bucket(a) != cal.Bucket(b) {
		t.Errorf("expected normalised buckets to match, got %q and %q", cal.Bucket(a), cal.Bucket(b))
	}
}
