package esoteric

// --- Test Fixtures ---

// unitSet builds unit graphs bottom-up; a node's duration is the sum of its
// children so fixtures always have consistent durations.
type unitSet struct {
	units []Unit
	dur   map[string]int64
}

func newUnitSet() *unitSet {
	return &unitSet{dur: make(map[string]int64)}
}

func (s *unitSet) leaf(id, bucket, shorthand string, mode FormatMode, duration int64) *unitSet {
	s.units = append(s.units, Unit{
		ID: id, Name: id, DisplayName: bucket,
		Duration: duration, FormatShorthand: shorthand, FormatMode: mode,
		Position: len(s.units),
	})
	s.dur[id] = duration
	return s
}

func (s *unitSet) node(id, bucket, shorthand string, mode FormatMode, rels ...ChildRelation) *unitSet {
	var total int64
	for i := range rels {
		rels[i].Position = i
		total += s.dur[rels[i].ChildUnitID] * rels[i].Repeats
	}
	s.units = append(s.units, Unit{
		ID: id, Name: id, DisplayName: bucket,
		Duration: total, FormatShorthand: shorthand, FormatMode: mode,
		Position: len(s.units), Children: rels,
	})
	s.dur[id] = total
	return s
}

func (s *unitSet) calendar(origin int64) *Calendar {
	return NewCalendar(WorldCalendar{Units: s.units, OriginTime: origin})
}

func rel(id string, repeats int64) ChildRelation {
	return ChildRelation{ChildUnitID: id, Repeats: repeats}
}

func named(id, label string) ChildRelation {
	return ChildRelation{ChildUnitID: id, Repeats: 1, Label: &label}
}

// secondsClock: second → minute → hour → day, day is the root.
func secondsClock() *unitSet {
	return newUnitSet().
		leaf("second", "Second", "s", ModeNumeric, 1).
		node("minute", "Minute", "i", ModeNumeric, rel("second", 60)).
		node("hour", "Hour", "h", ModeNumeric, rel("minute", 60)).
		node("day", "Day", "d", ModeNumeric, rel("hour", 24))
}

// minuteClock: minute → hour → day with explicit parent relations.
func minuteClock() *unitSet {
	s := newUnitSet().
		leaf("minute", "Minute", "i", ModeNumeric, 1).
		node("hour", "Hour", "h", ModeNumeric, rel("minute", 60)).
		node("day", "Day", "d", ModeNumeric, rel("hour", 24))
	s.units[0].Parents = []ParentRelation{{ParentUnitID: "hour", Repeats: 60}}
	s.units[1].Parents = []ParentRelation{{ParentUnitID: "day", Repeats: 24}}
	return s
}

// Minute-based Gregorian calendar. Year 0 is leap; the 400-year cycle is
// built from hidden 100-year and 4-year cycles.
const (
	minutesPerDay = 1440
	regularYear   = 365 * minutesPerDay
	leapYear      = 366 * minutesPerDay
)

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var monthLengths = []string{"m31", "m28", "m31", "m30", "m31", "m30", "m31", "m31", "m30", "m31", "m30", "m31"}

func yearRelations(leap bool) []ChildRelation {
	rels := make([]ChildRelation, len(monthLengths))
	for i, id := range monthLengths {
		if leap && id == "m28" {
			id = "m29"
		}
		rels[i] = named(id, monthNames[i])
	}
	return rels
}

func gregorian() *unitSet {
	return newUnitSet().
		leaf("minute", "Minute", "i", ModeNumeric, 1).
		node("hour", "Hour", "h", ModeNumeric, rel("minute", 60)).
		node("day", "Day", "d", ModeNumericOneIndexed, rel("hour", 24)).
		node("m31", "Month", "m", ModeName, rel("day", 31)).
		node("m30", "Month", "m", ModeName, rel("day", 30)).
		node("m28", "Month", "m", ModeName, rel("day", 28)).
		node("m29", "Month", "m", ModeName, rel("day", 29)).
		node("reg_year", "Year", "y", ModeNumeric, yearRelations(false)...).
		node("leap_year", "Year", "y", ModeNumeric, yearRelations(true)...).
		node("cycle4", "Cycle4", "", ModeHidden, rel("leap_year", 1), rel("reg_year", 3)).
		node("cycle4_plain", "Cycle4", "", ModeHidden, rel("reg_year", 4)).
		node("cycle100_first", "Cycle100", "", ModeHidden, rel("cycle4", 25)).
		node("cycle100", "Cycle100", "", ModeHidden, rel("cycle4_plain", 1), rel("cycle4", 24)).
		node("cycle400", "Cycle400", "", ModeHidden, rel("cycle100_first", 1), rel("cycle100", 3))
}

// withWeek adds a second root: a hidden seven-day week of labelled weekdays.
func withWeek(s *unitSet) *unitSet {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	rels := make([]ChildRelation, len(days))
	for i, d := range days {
		rels[i] = named("weekday", d)
	}
	return s.
		leaf("weekday", "Weekday", "w", ModeName, minutesPerDay).
		node("week", "Week", "", ModeHidden, rels...)
}

// breakDay: a shift of two hours, a half-hour break, two more hours.
func breakDay() *unitSet {
	return newUnitSet().
		leaf("minute", "Minute", "i", ModeNumeric, 1).
		node("hour", "Hour", "h", ModeNumeric, rel("minute", 60)).
		leaf("break", "Break", "b", ModeNumeric, 30).
		node("shift", "Shift", "s", ModeNumeric, rel("hour", 2), rel("break", 1), rel("hour", 2))
}

func isLeap(y int64) bool {
	return floorMod(y, 4) == 0 && (floorMod(y, 100) != 0 || floorMod(y, 400) == 0)
}

func yearLength(y int64) int64 {
	if isLeap(y) {
		return leapYear
	}
	return regularYear
}

// yearStart sums year lengths from year 0.
func yearStart(y int64) int64 {
	var t int64
	for i := int64(0); i < y; i++ {
		t += yearLength(i)
	}
	for i := int64(-1); i >= y; i-- {
		t -= yearLength(i)
	}
	return t
}
