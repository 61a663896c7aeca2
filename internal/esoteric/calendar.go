package esoteric

import (
	"sort"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// bucketCounts maps a display-name bucket to a number of visible slots.
type bucketCounts map[string]int64

// plus returns a new map holding b + scale*o. Neither input is modified.
func (b bucketCounts) plus(o bucketCounts, scale int64) bucketCounts {
	if len(o) == 0 || scale == 0 {
		return b
	}
	out := make(bucketCounts, len(b)+len(o))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range o {
		out[k] += v * scale
	}
	return out
}

// Calendar is a pre-indexed, read-only view of a WorldCalendar. Build it once
// per definition with NewCalendar and share it freely.
type Calendar struct {
	world WorldCalendar

	units    map[string]*Unit
	ordered  []*Unit
	roots    []*Unit
	children map[string][]ChildRelation
	parents  map[string][]*Unit
	buckets  map[string]string

	// counts holds, per unit, how many visible slots of each bucket one
	// instance contains once hidden children are expanded.
	counts map[string]bucketCounts
	// flat is the total number of visible slots per instance, hidden
	// children expanded.
	flat map[string]int64

	// shorthands groups the distinct shorthand runes by their lower-case form.
	shorthands map[rune]map[rune]bool
}

// NewCalendar indexes world. Child relations pointing at unknown units or
// with non-positive repeats are dropped; when a unit declares no parents,
// its parents are derived from the child relations that reference it.
func NewCalendar(world WorldCalendar) *Calendar {
	c := &Calendar{
		world:      WorldCalendar{OriginTime: world.OriginTime, Units: make([]Unit, len(world.Units))},
		units:      make(map[string]*Unit, len(world.Units)),
		children:   make(map[string][]ChildRelation, len(world.Units)),
		parents:    make(map[string][]*Unit, len(world.Units)),
		buckets:    make(map[string]string, len(world.Units)),
		counts:     make(map[string]bucketCounts, len(world.Units)),
		flat:       make(map[string]int64, len(world.Units)),
		shorthands: make(map[rune]map[rune]bool),
	}
	copy(c.world.Units, world.Units)

	for i := range c.world.Units {
		u := &c.world.Units[i]
		if _, dup := c.units[u.ID]; dup {
			continue
		}
		c.units[u.ID] = u
		c.ordered = append(c.ordered, u)
		c.buckets[u.ID] = norm.NFC.String(u.bucketName())
		if r, ok := shorthandRune(u.FormatShorthand); ok {
			key := unicode.ToLower(r)
			if c.shorthands[key] == nil {
				c.shorthands[key] = make(map[rune]bool)
			}
			c.shorthands[key][r] = true
		}
	}

	for _, u := range c.ordered {
		var rels []ChildRelation
		for _, rel := range u.Children {
			child, ok := c.units[rel.ChildUnitID]
			if !ok || rel.Repeats <= 0 || child.Duration <= 0 {
				continue
			}
			rels = append(rels, rel)
		}
		sort.SliceStable(rels, func(i, j int) bool { return rels[i].Position < rels[j].Position })
		c.children[u.ID] = rels
	}

	derived := make(map[string][]*Unit)
	for _, u := range c.ordered {
		for _, rel := range c.children[u.ID] {
			if !containsUnit(derived[rel.ChildUnitID], u) {
				derived[rel.ChildUnitID] = append(derived[rel.ChildUnitID], u)
			}
		}
	}
	for _, u := range c.ordered {
		if len(u.Parents) == 0 {
			c.parents[u.ID] = derived[u.ID]
			continue
		}
		for _, p := range u.Parents {
			if parent, ok := c.units[p.ParentUnitID]; ok && !containsUnit(c.parents[u.ID], parent) {
				c.parents[u.ID] = append(c.parents[u.ID], parent)
			}
		}
	}

	for _, u := range c.ordered {
		if len(c.parents[u.ID]) == 0 {
			c.roots = append(c.roots, u)
		}
	}
	sort.SliceStable(c.roots, func(i, j int) bool { return c.roots[i].Position < c.roots[j].Position })

	visiting := make(map[string]bool)
	for _, u := range c.ordered {
		c.countSlots(u, visiting)
	}
	return c
}

// countSlots fills counts and flat for u. A unit reached again while it is
// still being counted (a cycle) contributes nothing.
func (c *Calendar) countSlots(u *Unit, visiting map[string]bool) (bucketCounts, int64) {
	if counts, ok := c.counts[u.ID]; ok {
		return counts, c.flat[u.ID]
	}
	if visiting[u.ID] {
		return nil, 0
	}
	visiting[u.ID] = true
	defer delete(visiting, u.ID)

	counts := bucketCounts{}
	var flat int64
	for _, rel := range c.children[u.ID] {
		child := c.units[rel.ChildUnitID]
		if child.IsHidden() {
			sub, subFlat := c.countSlots(child, visiting)
			for k, v := range sub {
				counts[k] += v * rel.Repeats
			}
			flat += subFlat * rel.Repeats
			continue
		}
		counts[c.buckets[child.ID]] += rel.Repeats
		flat += rel.Repeats
	}
	c.counts[u.ID] = counts
	c.flat[u.ID] = flat
	return counts, flat
}

// World returns the definition the calendar was built from.
func (c *Calendar) World() WorldCalendar {
	return c.world
}

// OriginTime returns the raw-to-absolute shift.
func (c *Calendar) OriginTime() int64 {
	return c.world.OriginTime
}

// Unit looks up a unit by id.
func (c *Calendar) Unit(id string) (*Unit, bool) {
	u, ok := c.units[id]
	return u, ok
}

// Roots returns the units without parents, in declared order.
func (c *Calendar) Roots() []*Unit {
	return append([]*Unit(nil), c.roots...)
}

// Bucket returns the normalised display-name bucket of a unit.
func (c *Calendar) Bucket(u *Unit) string {
	if b, ok := c.buckets[u.ID]; ok {
		return b
	}
	return norm.NFC.String(u.bucketName())
}

// relationCounts is the number of visible slots per bucket a whole
// relation contributes to its parent.
func (c *Calendar) relationCounts(rel ChildRelation) bucketCounts {
	child := c.units[rel.ChildUnitID]
	if child.IsHidden() {
		return bucketCounts{}.plus(c.counts[child.ID], rel.Repeats)
	}
	return bucketCounts{c.buckets[child.ID]: rel.Repeats}
}

// relationSpan is the duration covered by all repeats of a relation.
func (c *Calendar) relationSpan(rel ChildRelation) int64 {
	return rel.Repeats * c.units[rel.ChildUnitID].Duration
}

// flatWeight is how many visible slots one instance of u stands for.
func (c *Calendar) flatWeight(u *Unit) int64 {
	if u.IsHidden() {
		return c.flat[u.ID]
	}
	return 1
}

// locate finds the relation of rels whose span contains offset and returns
// its index and start. An offset exactly at the end of the last relation is
// treated as inside it. Returns -1 when offset lies beyond the relations.
func (c *Calendar) locate(rels []ChildRelation, offset int64) (int, int64) {
	var acc int64
	for i, rel := range rels {
		span := c.relationSpan(rel)
		if offset < acc+span {
			return i, acc
		}
		acc += span
	}
	if n := len(rels); n > 0 && offset == acc {
		return n - 1, acc - c.relationSpan(rels[n-1])
	}
	return -1, 0
}

func containsUnit(list []*Unit, u *Unit) bool {
	for _, x := range list {
		if x == u {
			return true
		}
	}
	return false
}

func shorthandRune(s string) (rune, bool) {
	for _, r := range s {
		return r, true
	}
	return 0, false
}
