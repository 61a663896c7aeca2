package calendar

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/keyxmakerx/esoterica/internal/apperror"
	"github.com/keyxmakerx/esoterica/internal/esoteric"
	"github.com/keyxmakerx/esoterica/internal/sanitize"
)

// Definition limits.
const (
	maxUnits       = 1000
	maxNameLength  = 100
	maxUnitIDLen   = 64
	maxLabelLength = 100
)

// normalizeUnits cleans user-supplied units before validation: markup is
// stripped from names and labels, an empty format mode becomes numeric, and
// positions are rewritten to 0..n-1 in their existing order so storage
// ordering matches the declared ordering.
func normalizeUnits(units []esoteric.Unit) []esoteric.Unit {
	out := make([]esoteric.Unit, len(units))
	copy(out, units)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	for i := range out {
		u := &out[i]
		u.ID = strings.TrimSpace(u.ID)
		u.Name = sanitize.Text(u.Name)
		u.DisplayName = sanitize.Name(u.DisplayName)
		if u.DisplayNameShort != nil {
			short := sanitize.Text(*u.DisplayNameShort)
			u.DisplayNameShort = &short
		}
		if u.FormatMode == "" {
			u.FormatMode = esoteric.ModeNumeric
		}
		u.Position = i

		children := make([]esoteric.ChildRelation, len(u.Children))
		copy(children, u.Children)
		sort.SliceStable(children, func(a, b int) bool { return children[a].Position < children[b].Position })
		for k := range children {
			children[k].ChildUnitID = strings.TrimSpace(children[k].ChildUnitID)
			children[k].Position = k
			if children[k].Label != nil {
				label := sanitize.Text(*children[k].Label)
				children[k].Label = &label
			}
		}
		u.Children = children
		u.Parents = nil
	}
	return withDerivedParents(out)
}

// ValidateUnits checks that a unit graph is well formed. The engine itself
// tolerates dangling children; stored definitions do not.
func ValidateUnits(units []esoteric.Unit) error {
	if len(units) == 0 {
		return apperror.NewValidation("calendar must have at least one unit")
	}
	if len(units) > maxUnits {
		return apperror.NewValidation(fmt.Sprintf("calendar cannot have more than %d units", maxUnits))
	}

	byID := make(map[string]*esoteric.Unit, len(units))
	for i := range units {
		u := &units[i]
		if u.ID == "" {
			return apperror.NewValidation(fmt.Sprintf("unit %d: id is required", i+1))
		}
		if len(u.ID) > maxUnitIDLen {
			return apperror.NewValidation(fmt.Sprintf("unit %q: id must be at most %d characters", u.ID, maxUnitIDLen))
		}
		if _, dup := byID[u.ID]; dup {
			return apperror.NewValidation(fmt.Sprintf("unit %q: duplicate id", u.ID))
		}
		byID[u.ID] = u

		if u.Name == "" {
			return apperror.NewValidation(fmt.Sprintf("unit %q: name is required", u.ID))
		}
		if utf8.RuneCountInString(u.Name) > maxNameLength || utf8.RuneCountInString(u.DisplayName) > maxNameLength {
			return apperror.NewValidation(fmt.Sprintf("unit %q: names must be at most %d characters", u.ID, maxNameLength))
		}
		if u.Duration <= 0 {
			return apperror.NewValidation(fmt.Sprintf("unit %q: duration must be positive", u.ID))
		}
		if !u.FormatMode.Valid() {
			return apperror.NewValidation(fmt.Sprintf("unit %q: unknown format mode %q", u.ID, u.FormatMode))
		}
		if utf8.RuneCountInString(u.FormatShorthand) > 1 {
			return apperror.NewValidation(fmt.Sprintf("unit %q: format shorthand must be a single character", u.ID))
		}
	}

	for _, u := range units {
		if len(u.Children) == 0 {
			continue
		}
		var total int64
		for _, rel := range u.Children {
			child, ok := byID[rel.ChildUnitID]
			if !ok {
				return apperror.NewValidation(fmt.Sprintf("unit %q: child %q does not exist", u.ID, rel.ChildUnitID))
			}
			if rel.Repeats <= 0 {
				return apperror.NewValidation(fmt.Sprintf("unit %q: repeats of %q must be positive", u.ID, rel.ChildUnitID))
			}
			if rel.Label != nil && utf8.RuneCountInString(*rel.Label) > maxLabelLength {
				return apperror.NewValidation(fmt.Sprintf("unit %q: label must be at most %d characters", u.ID, maxLabelLength))
			}
			total += child.Duration * rel.Repeats
		}
		if total != u.Duration {
			return apperror.NewValidation(fmt.Sprintf(
				"unit %q: duration %d does not match its children (%d)", u.ID, u.Duration, total))
		}
	}

	if id, ok := findCycle(units, byID); ok {
		return apperror.NewValidation(fmt.Sprintf("unit %q: contains itself", id))
	}
	return nil
}

// findCycle reports a unit that is reachable from itself through children.
func findCycle(units []esoteric.Unit, byID map[string]*esoteric.Unit) (string, bool) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(units))

	var visit func(id string) (string, bool)
	visit = func(id string) (string, bool) {
		switch state[id] {
		case visiting:
			return id, true
		case done:
			return "", false
		}
		state[id] = visiting
		for _, rel := range byID[id].Children {
			if _, ok := byID[rel.ChildUnitID]; !ok {
				continue
			}
			if cyc, found := visit(rel.ChildUnitID); found {
				return cyc, true
			}
		}
		state[id] = done
		return "", false
	}

	for _, u := range units {
		if cyc, found := visit(u.ID); found {
			return cyc, true
		}
	}
	return "", false
}
