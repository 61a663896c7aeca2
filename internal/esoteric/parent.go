package esoteric

// ActiveParent is the parent instance that contains a unit at a given
// timestamp. CycleStart is in raw (caller) time.
type ActiveParent struct {
	Parent     *Unit
	CycleStart int64
}

// instance is one concrete occurrence of a unit, starting at an absolute time.
type instance struct {
	unit  *Unit
	start int64
}

// ResolveActiveParent finds which of unitID's parents contains the raw
// timestamp. The boolean is false when the unit is a root.
func ResolveActiveParent(cal *Calendar, unitID string, timestamp int64) (ActiveParent, bool, error) {
	u, ok := cal.units[unitID]
	if !ok {
		return ActiveParent{}, false, unknownUnit(unitID)
	}
	abs := timestamp + cal.world.OriginTime
	path, ok := cal.lineage(u, abs)
	if !ok {
		return ActiveParent{}, false, unreachableUnit(unitID, abs)
	}
	if len(path) < 2 {
		return ActiveParent{}, false, nil
	}
	parent := path[len(path)-2]
	return ActiveParent{Parent: parent.unit, CycleStart: parent.start - cal.world.OriginTime}, true, nil
}

// ultimateRoot climbs from u through the longest parent at each level.
func (c *Calendar) ultimateRoot(u *Unit) *Unit {
	seen := map[string]bool{u.ID: true}
	for {
		var best *Unit
		for _, p := range c.parents[u.ID] {
			if best == nil || p.Duration > best.Duration {
				best = p
			}
		}
		if best == nil || seen[best.ID] {
			return u
		}
		seen[best.ID] = true
		u = best
	}
}

// lineage walks down from target's ultimate root to the instance of target
// containing the absolute time t. The returned path starts at the root
// instance and ends at the target instance.
func (c *Calendar) lineage(target *Unit, t int64) ([]instance, bool) {
	root := c.ultimateRoot(target)
	if root.Duration <= 0 {
		return nil, false
	}
	cur := instance{unit: root, start: floorDiv(t, root.Duration) * root.Duration}
	path := []instance{cur}
	for depth := 0; depth <= len(c.ordered); depth++ {
		if cur.unit.ID == target.ID {
			return path, true
		}
		rels := c.children[cur.unit.ID]
		k, relStart := c.locate(rels, t-cur.start)
		if k < 0 {
			return nil, false
		}
		rel := rels[k]
		child := c.units[rel.ChildUnitID]
		slot := (t - cur.start - relStart) / child.Duration
		if slot >= rel.Repeats {
			slot = rel.Repeats - 1
		}
		cur = instance{unit: child, start: cur.start + relStart + slot*child.Duration}
		path = append(path, cur)
	}
	return nil, false
}
