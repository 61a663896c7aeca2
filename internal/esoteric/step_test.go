package esoteric

import (
	"errors"
	"testing"
)

// --- Step Tests ---

func TestStep_MinuteClock(t *testing.T) {
	cal := minuteClock().calendar(0)

	tests := []struct {
		name   string
		unit   string
		ts     int64
		amount int64
		want   int64
	}{
		{"minute rolls into next hour", "minute", 59, 1, 60},
		{"minute rolls back past zero", "minute", 0, -1, -1},
		{"hour keeps minute", "hour", 75, 2, 195},
		{"hour rolls into next day", "hour", 23*60 + 10, 1, minutesPerDay + 10},
		{"day keeps time of day", "day", 100, -3, 100 - 3*minutesPerDay},
		{"large minute amount", "minute", 0, 3 * minutesPerDay, 3 * minutesPerDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Step(tt.unit, tt.ts, tt.amount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStep_ZeroIsIdentity(t *testing.T) {
	cal := withWeek(gregorian()).calendar(0)

	for _, unit := range []string{"minute", "day", "m30", "reg_year", "weekday", "cycle4"} {
		for _, ts := range []int64{-987654321, -1, 0, 123456789} {
			got, err := cal.Step(unit, ts, 0)
			if err != nil {
				t.Fatalf("%s at %d: unexpected error: %v", unit, ts, err)
			}
			if got != ts {
				t.Errorf("%s at %d: expected no movement, got %d", unit, ts, got)
			}
		}
	}
}

func TestStep_UnknownUnit(t *testing.T) {
	cal := gregorian().calendar(0)

	for _, amount := range []int64{0, 1} {
		_, err := cal.Step("fortnight", 0, amount)
		if !errors.Is(err, ErrUnknownUnit) {
			t.Errorf("amount %d: expected ErrUnknownUnit, got %v", amount, err)
		}
	}
}

func TestStep_YearLengths(t *testing.T) {
	cal := gregorian().calendar(0)

	ts := yearStart(-401)
	for y := int64(-401); y <= 401; y++ {
		if ts != yearStart(y) {
			t.Fatalf("year %d: expected start %d, got %d", y, yearStart(y), ts)
		}
		f, err := cal.match("reg_year", ts)
		if err != nil {
			t.Fatalf("year %d: unexpected error: %v", y, err)
		}
		if f.Value != y {
			t.Fatalf("expected year %d, got %d", y, f.Value)
		}
		next, err := cal.Step("reg_year", ts, 1)
		if err != nil {
			t.Fatalf("year %d: unexpected error: %v", y, err)
		}
		if next-ts != yearLength(y) {
			t.Errorf("year %d: expected length %d, got %d", y, yearLength(y), next-ts)
		}
		ts = next
	}
}

func TestStep_BackwardYears(t *testing.T) {
	cal := gregorian().calendar(0)

	ts := int64(0)
	for y := int64(-1); y >= -120; y-- {
		prev, err := cal.Step("leap_year", ts, -1)
		if err != nil {
			t.Fatalf("year %d: unexpected error: %v", y, err)
		}
		if prev != yearStart(y) {
			t.Fatalf("year %d: expected start %d, got %d", y, yearStart(y), prev)
		}
		ts = prev
	}
}

func TestStep_MonthClampsDay(t *testing.T) {
	cal := gregorian().calendar(0)

	jan31 := yearStart(1) + 30*minutesPerDay + 8*60
	got, err := cal.Step("m31", jan31, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := yearStart(1) + (31+27)*minutesPerDay + 8*60
	if got != want {
		t.Errorf("expected Feb 28 08:00 (%d), got %d", want, got)
	}
}

func TestStep_DayAcrossMonth(t *testing.T) {
	cal := gregorian().calendar(0)

	mar1 := yearStart(1) + 59*minutesPerDay
	got, err := cal.Step("day", mar1, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := yearStart(1) + 58*minutesPerDay; got != want {
		t.Errorf("expected Feb 28 (%d), got %d", want, got)
	}
}

func TestStep_LeapDayClampsOnYearStep(t *testing.T) {
	cal := gregorian().calendar(0)

	feb29 := yearStart(4) + (31+28)*minutesPerDay + 22*60 + 35
	got, err := cal.Step("reg_year", feb29, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := yearStart(5) + (31+27)*minutesPerDay + 22*60 + 35
	if got != want {
		t.Errorf("expected Feb 28 22:35 of year 5 (%d), got %d", want, got)
	}

	parsed := cal.Parse(got)
	if got := fieldValue(t, parsed, "reg_year"); got != 5 {
		t.Errorf("expected year 5, got %d", got)
	}
	if _, ok := parsed.Get("m28"); !ok {
		t.Error("expected a regular February")
	}
}

func TestStep_MonthAcrossYearBoundary(t *testing.T) {
	cal := gregorian().calendar(0)

	dec15 := yearStart(3) + (365-17)*minutesPerDay
	got, err := cal.Step("m31", dec15, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Year 4 is leap: 31 days of January, then Feb 15.
	if want := yearStart(4) + (31+14)*minutesPerDay; got != want {
		t.Errorf("expected Feb 15 of year 4 (%d), got %d", want, got)
	}
}

func TestStep_Monotonic(t *testing.T) {
	cal := withWeek(gregorian()).calendar(0)

	units := []string{"minute", "hour", "day", "m31", "reg_year", "weekday"}
	starts := []int64{-1000000000, -1, 0, 123456789}
	for _, unit := range units {
		for _, amount := range []int64{1, -1, 7, -13} {
			for _, start := range starts {
				ts := start
				for i := 0; i < 60; i++ {
					next, err := cal.Step(unit, ts, amount)
					if err != nil {
						t.Fatalf("%s %+d from %d: unexpected error: %v", unit, amount, ts, err)
					}
					if (amount > 0 && next <= ts) || (amount < 0 && next >= ts) {
						t.Fatalf("%s %+d from %d: not monotonic, got %d", unit, amount, ts, next)
					}
					ts = next
				}
			}
		}
	}
}

func TestStep_HiddenUnit(t *testing.T) {
	cal := gregorian().calendar(0)
	cycle4 := int64(1461 * minutesPerDay)
	firstCentury := 25 * cycle4

	tests := []struct {
		name   string
		unit   string
		ts     int64
		amount int64
		want   int64
	}{
		{"next cycle keeps offset", "cycle4", 10, 1, cycle4 + 10},
		{"overflow into next century", "cycle4", 24*cycle4 + 5, 1, firstCentury + 5},
		{"offset too long for shorter slot", "cycle100_first", firstCentury - 10, 1, firstCentury},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Step(tt.unit, tt.ts, tt.amount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestStep_ChildLostInBreak(t *testing.T) {
	cal := breakDay().calendar(0)

	got, err := cal.Step("hour", 75, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 120 {
		t.Errorf("expected break start 120, got %d", got)
	}

	got, err = cal.Step("hour", 75, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 165 {
		t.Errorf("expected 165 past the break, got %d", got)
	}
	if v := fieldValue(t, cal.Parse(got), "hour"); v != 2 {
		t.Errorf("expected hour 2, got %d", v)
	}
}

func TestStep_UnreachableUnit(t *testing.T) {
	cal := breakDay().calendar(0)

	_, err := cal.Step("hour", 125, 1)
	if !errors.Is(err, ErrUnreachableUnit) {
		t.Errorf("expected ErrUnreachableUnit inside the break, got %v", err)
	}
}

// --- Floor / Round Tests ---

func TestFloor_SecondsClock(t *testing.T) {
	cal := secondsClock().calendar(0)

	tests := []struct {
		unit string
		ts   int64
		want int64
	}{
		{"hour", 19845, 18000},
		{"minute", 19845, 19800},
		{"second", 19845, 19845},
		{"day", 19845, 0},
		{"day", -1, -86400},
	}
	for _, tt := range tests {
		got, err := cal.Floor(tt.unit, tt.ts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("floor %s at %d: expected %d, got %d", tt.unit, tt.ts, tt.want, got)
		}
	}
}

func TestFloor_Idempotent(t *testing.T) {
	cal := withWeek(gregorian()).calendar(0)

	for _, unit := range []string{"hour", "day", "m30", "reg_year", "weekday", "cycle4"} {
		for _, ts := range []int64{-777777777, -1, 0, 5, 88888888} {
			f, err := cal.Floor(unit, ts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f > ts {
				t.Errorf("floor %s at %d: %d is after the timestamp", unit, ts, f)
			}
			again, err := cal.Floor(unit, f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if again != f {
				t.Errorf("floor %s at %d: not idempotent, %d then %d", unit, ts, f, again)
			}
		}
	}
}

func TestFloor_YearInGregorian(t *testing.T) {
	cal := gregorian().calendar(0)

	got, err := cal.Floor("reg_year", yearStart(1999)+400000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != yearStart(1999) {
		t.Errorf("expected %d, got %d", yearStart(1999), got)
	}
}

func TestRound(t *testing.T) {
	cal := secondsClock().calendar(0)

	tests := []struct {
		name string
		ts   int64
		want int64
	}{
		{"exact midpoint rounds down", 1800, 0},
		{"just past midpoint rounds up", 1801, 3600},
		{"just before midpoint", 1799, 0},
		{"on boundary", 3600, 3600},
		{"negative midpoint", -1800, -3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.Round("hour", tt.ts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRound_UnknownUnit(t *testing.T) {
	cal := secondsClock().calendar(0)

	if _, err := cal.Round("week", 0); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
	if _, err := cal.Floor("week", 0); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
}
