package esoteric

// Date is an immutable raw timestamp on a calendar. Navigation returns a new
// Date; the receiver is never changed.
type Date struct {
	cal *Calendar
	ts  int64
}

// New returns the date at raw timestamp ts.
func New(cal *Calendar, ts int64) Date {
	return Date{cal: cal, ts: ts}
}

// Timestamp returns the raw timestamp.
func (d Date) Timestamp() int64 {
	return d.ts
}

// Calendar returns the calendar the date belongs to.
func (d Date) Calendar() *Calendar {
	return d.cal
}

// Equal reports whether both dates share a calendar and timestamp.
func (d Date) Equal(o Date) bool {
	return d.cal == o.cal && d.ts == o.ts
}

func (d Date) abs() int64 {
	return d.ts + d.cal.world.OriginTime
}

func (d Date) fromAbs(abs int64) Date {
	return Date{cal: d.cal, ts: abs - d.cal.world.OriginTime}
}

// Step moves the date by amount instances of unitID.
func (d Date) Step(unitID string, amount int64) (Date, error) {
	abs, err := d.cal.Step(unitID, d.abs(), amount)
	if err != nil {
		return d, err
	}
	return d.fromAbs(abs), nil
}

// Next is Step with an amount of one.
func (d Date) Next(unitID string) (Date, error) {
	return d.Step(unitID, 1)
}

// Floor truncates the date to the start of the containing unitID instance.
func (d Date) Floor(unitID string) (Date, error) {
	abs, err := d.cal.Floor(unitID, d.abs())
	if err != nil {
		return d, err
	}
	return d.fromAbs(abs), nil
}

// Round moves the date to the nearest unitID boundary, ties going down.
func (d Date) Round(unitID string) (Date, error) {
	abs, err := d.cal.Round(unitID, d.abs())
	if err != nil {
		return d, err
	}
	return d.fromAbs(abs), nil
}

// Get returns the value of the unit of unitID's bucket active at the date.
func (d Date) Get(unitID string) (Field, error) {
	return d.cal.match(unitID, d.abs())
}

// Parsed returns every field of the date.
func (d Date) Parsed() ParsedTimestamp {
	return d.cal.Parse(d.abs())
}

// Format renders the date with a template.
func (d Date) Format(template string) string {
	return d.cal.Format(d.Parsed(), template)
}

// ActiveParent returns the parent instance containing unitID at the date.
func (d Date) ActiveParent(unitID string) (ActiveParent, bool, error) {
	return ResolveActiveParent(d.cal, unitID, d.ts)
}
