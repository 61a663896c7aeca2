package esoteric

// Field is the value of one unit at a parsed timestamp.
type Field struct {
	UnitID          string  `json:"unit_id"`
	Unit            *Unit   `json:"-"`
	Value           int64   `json:"value"`
	FormatShorthand string  `json:"format_shorthand,omitempty"`
	CustomLabel     *string `json:"custom_label,omitempty"`
}

// FieldValue is the input shape of the ascent resolver.
type FieldValue struct {
	Value           int64  `json:"value" yaml:"value" toml:"value"`
	FormatShorthand string `json:"format_shorthand,omitempty" yaml:"format_shorthand,omitempty" toml:"format_shorthand,omitempty"`
}

// ParsedTimestamp holds one Field per reachable unit, in root then depth
// order.
type ParsedTimestamp struct {
	fields []Field
	byID   map[string]int
}

// Get returns the field for a unit id.
func (p ParsedTimestamp) Get(unitID string) (Field, bool) {
	i, ok := p.byID[unitID]
	if !ok {
		return Field{}, false
	}
	return p.fields[i], true
}

// Fields returns the parsed fields in order.
func (p ParsedTimestamp) Fields() []Field {
	return append([]Field(nil), p.fields...)
}

// Len returns the number of parsed fields.
func (p ParsedTimestamp) Len() int {
	return len(p.fields)
}

// Values converts the parse result into resolver input.
func (p ParsedTimestamp) Values() map[string]FieldValue {
	out := make(map[string]FieldValue, len(p.fields))
	for _, f := range p.fields {
		out[f.UnitID] = FieldValue{Value: f.Value, FormatShorthand: f.FormatShorthand}
	}
	return out
}

// ParseTimestampMultiRoot parses an absolute timestamp against every root of
// units. It indexes units on each call; hold a Calendar and call Parse when
// parsing repeatedly.
func ParseTimestampMultiRoot(units []Unit, timestamp int64) ParsedTimestamp {
	return NewCalendar(WorldCalendar{Units: units}).Parse(timestamp)
}

// Parse walks every root at the absolute timestamp t. Results from later
// roots are dropped when an earlier root already produced a field with the
// same format shorthand; units without a shorthand are always kept.
func (c *Calendar) Parse(t int64) ParsedTimestamp {
	p := ParsedTimestamp{byID: make(map[string]int)}
	seen := make(map[string]bool)
	for _, root := range c.roots {
		for _, f := range c.descend(root, t) {
			if _, dup := p.byID[f.UnitID]; dup {
				continue
			}
			if f.FormatShorthand != "" {
				if seen[f.FormatShorthand] {
					continue
				}
				seen[f.FormatShorthand] = true
			}
			p.byID[f.UnitID] = len(p.fields)
			p.fields = append(p.fields, f)
		}
	}
	return p
}

// descend walks from u down to a leaf with t taken as the offset inside the
// block u was selected from (for a root, the absolute timestamp). The carry
// holds, per bucket, the visible slots already passed by hidden ancestors and
// earlier sibling relations; it resets below every visible unit.
func (c *Calendar) descend(u *Unit, t int64) []Field {
	var (
		path  []Field
		carry bucketCounts
		label *string
	)
	for depth := 0; depth <= len(c.ordered); depth++ {
		if u.Duration <= 0 {
			break
		}
		idx := floorDiv(t, u.Duration)
		rem := t - idx*u.Duration

		value := idx
		if !u.IsHidden() {
			value += carry[c.buckets[u.ID]]
		}
		path = append(path, Field{
			UnitID:          u.ID,
			Unit:            u,
			Value:           value,
			FormatShorthand: u.FormatShorthand,
			CustomLabel:     label,
		})

		rels := c.children[u.ID]
		k, start := c.locate(rels, rem)
		if k < 0 {
			break
		}

		var next bucketCounts
		if u.IsHidden() {
			next = carry.plus(c.counts[u.ID], idx)
		}
		for _, prior := range rels[:k] {
			next = next.plus(c.relationCounts(prior), 1)
		}

		rel := rels[k]
		u, t, carry, label = c.units[rel.ChildUnitID], rem-start, next, rel.Label
	}
	return path
}

// reachable returns the unfiltered descent of every root, in root order.
func (c *Calendar) reachable(t int64) []Field {
	var out []Field
	for _, root := range c.roots {
		out = append(out, c.descend(root, t)...)
	}
	return out
}

// match finds the field of the unit actually active at t for the bucket of
// unitID, preferring the unit itself.
func (c *Calendar) match(unitID string, t int64) (Field, error) {
	u, ok := c.units[unitID]
	if !ok {
		return Field{}, unknownUnit(unitID)
	}
	fields := c.reachable(t)
	for _, f := range fields {
		if f.UnitID == u.ID {
			return f, nil
		}
	}
	bucket := c.buckets[u.ID]
	for _, f := range fields {
		if c.buckets[f.UnitID] == bucket {
			return f, nil
		}
	}
	return Field{}, unreachableUnit(unitID, t)
}
