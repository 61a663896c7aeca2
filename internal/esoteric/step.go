package esoteric

// Step moves the absolute time t by amount instances of the unit bucket of
// unitID. Sub-fields below the stepped unit are carried into the destination
// slot; fields the destination cannot hold are clamped to its last slot, and
// fields whose bucket it does not contain at all are dropped.
func (c *Calendar) Step(unitID string, t, amount int64) (int64, error) {
	f, err := c.match(unitID, t)
	if err != nil {
		return t, err
	}
	if amount == 0 {
		return t, nil
	}
	u := f.Unit

	path, ok := c.lineage(u, t)
	if !ok {
		return t, unreachableUnit(unitID, t)
	}
	if len(path) == 1 {
		return t + amount*u.Duration, nil
	}
	if u.IsHidden() {
		return c.stepHidden(path, t, amount)
	}
	return c.stepVisible(path, t, amount)
}

// stepVisible counts slots across every hidden unit between the stepped
// unit and its nearest visible ancestor, so hidden cycles are never a
// boundary. Overflow past the visible ancestor steps that ancestor; with no
// visible ancestor the root cycles repeat and the count is unbounded.
func (c *Calendar) stepVisible(path []instance, t, amount int64) (int64, error) {
	self := path[len(path)-1]
	chain := c.chainBelow(self, t)

	ctx := -1
	for i := len(path) - 2; i >= 0; i-- {
		if !path[i].unit.IsHidden() {
			ctx = i
			break
		}
	}

	if ctx < 0 {
		root := path[0]
		total := c.flat[root.unit.ID]
		if total == 0 {
			return t, nil
		}
		cycle := floorDiv(root.start, root.unit.Duration)
		target := cycle*total + c.flatIndex(path, 0) + amount
		cycle = floorDiv(target, total)
		slot, offset, ok := c.nthFlatSlot(root.unit, target-cycle*total)
		if !ok {
			return t, nil
		}
		return cycle*root.unit.Duration + offset + c.reapply(slot, chain), nil
	}

	parent := path[ctx]
	total := c.flat[parent.unit.ID]
	if total == 0 {
		return t, nil
	}
	target := c.flatIndex(path, ctx) + amount
	overflow := floorDiv(target, total)
	slot, offset, ok := c.nthFlatSlot(parent.unit, target-overflow*total)
	if !ok {
		return t, nil
	}
	next := parent.start + offset + c.reapply(slot, chain)
	if overflow == 0 {
		return next, nil
	}
	return c.Step(parent.unit.ID, next, overflow)
}

// stepHidden moves a hidden unit through its direct parent's slots and keeps
// the offset inside the hidden instance when the destination slot is long
// enough, otherwise lands on the slot start.
func (c *Calendar) stepHidden(path []instance, t, amount int64) (int64, error) {
	self := path[len(path)-1]
	parent := path[len(path)-2]
	rels := c.children[parent.unit.ID]

	var total, current int64 = 0, -1
	var acc int64
	offset := self.start - parent.start
	for _, rel := range rels {
		span := c.relationSpan(rel)
		if current < 0 && offset < acc+span {
			current = total + (offset-acc)/c.units[rel.ChildUnitID].Duration
		}
		total += rel.Repeats
		acc += span
	}
	if total == 0 || current < 0 {
		return t, nil
	}

	target := current + amount
	overflow := floorDiv(target, total)
	slot, slotStart, ok := c.nthSlot(rels, target-overflow*total)
	if !ok {
		return t, nil
	}
	inner := t - self.start
	if inner >= slot.Duration {
		inner = 0
	}
	next := parent.start + slotStart + inner
	if overflow == 0 {
		return next, nil
	}
	return c.Step(parent.unit.ID, next, overflow)
}

// flatIndex counts the visible slots that precede the last instance of path
// inside the instance path[from].
func (c *Calendar) flatIndex(path []instance, from int) int64 {
	var n int64
	for i := from; i < len(path)-1; i++ {
		offset := path[i+1].start - path[i].start
		var acc int64
		for _, rel := range c.children[path[i].unit.ID] {
			child := c.units[rel.ChildUnitID]
			span := c.relationSpan(rel)
			if offset < acc+span {
				n += ((offset - acc) / child.Duration) * c.flatWeight(child)
				break
			}
			n += rel.Repeats * c.flatWeight(child)
			acc += span
		}
	}
	return n
}

// nthFlatSlot returns the visible unit at flat slot n of an instance of u and
// its offset from the instance start.
func (c *Calendar) nthFlatSlot(u *Unit, n int64) (*Unit, int64, bool) {
	var acc int64
	for _, rel := range c.children[u.ID] {
		child := c.units[rel.ChildUnitID]
		weight := c.flatWeight(child)
		if weight > 0 && n < rel.Repeats*weight {
			k := n / weight
			offset := acc + k*child.Duration
			if !child.IsHidden() {
				return child, offset, true
			}
			sub, subOffset, ok := c.nthFlatSlot(child, n-k*weight)
			return sub, offset + subOffset, ok
		}
		n -= rel.Repeats * weight
		acc += c.relationSpan(rel)
	}
	return nil, 0, false
}

// nthSlot returns the unit at raw slot n of a relation list (repeats
// expanded, hidden units not) and the slot's offset.
func (c *Calendar) nthSlot(rels []ChildRelation, n int64) (*Unit, int64, bool) {
	var acc int64
	for _, rel := range rels {
		child := c.units[rel.ChildUnitID]
		if n < rel.Repeats {
			return child, acc + n*child.Duration, true
		}
		n -= rel.Repeats
		acc += c.relationSpan(rel)
	}
	return nil, 0, false
}

// nthBucketSlot returns the n-th visible slot of bucket inside an instance
// of u, counting through hidden children, and its offset.
func (c *Calendar) nthBucketSlot(u *Unit, bucket string, n int64) (*Unit, int64, bool) {
	var acc int64
	for _, rel := range c.children[u.ID] {
		child := c.units[rel.ChildUnitID]
		count := c.relationCounts(rel)[bucket]
		if n < count {
			if !child.IsHidden() {
				return child, acc + n*child.Duration, true
			}
			per := c.counts[child.ID][bucket]
			k := n / per
			sub, subOffset, ok := c.nthBucketSlot(child, bucket, n-k*per)
			return sub, acc + k*child.Duration + subOffset, ok
		}
		n -= count
		acc += c.relationSpan(rel)
	}
	return nil, 0, false
}

// chainBelow lists the visible fields under an instance, innermost value
// kept when a bucket repeats. Values are relative to the instance because
// counting restarts below every visible unit.
func (c *Calendar) chainBelow(self instance, t int64) []Field {
	below := c.descend(self.unit, t-self.start)
	if len(below) > 0 {
		below = below[1:]
	}
	last := make(map[string]int)
	for i, f := range below {
		if !f.Unit.IsHidden() {
			last[c.buckets[f.UnitID]] = i
		}
	}
	var chain []Field
	for i, f := range below {
		if !f.Unit.IsHidden() && last[c.buckets[f.UnitID]] == i {
			chain = append(chain, f)
		}
	}
	return chain
}

// reapply places chain inside an instance of u and returns the offset
// reached. A value beyond the destination's capacity is clamped to its last
// slot; a bucket the destination lacks ends the walk at the slot reached.
func (c *Calendar) reapply(u *Unit, chain []Field) int64 {
	var offset int64
	for _, f := range chain {
		bucket := c.buckets[f.UnitID]
		capacity := c.counts[u.ID][bucket]
		if capacity == 0 {
			break
		}
		v := f.Value
		if v >= capacity {
			v = capacity - 1
		}
		if v < 0 {
			v = 0
		}
		child, o, ok := c.nthBucketSlot(u, bucket, v)
		if !ok {
			break
		}
		offset += o
		u = child
	}
	return offset
}
