package esoteric

// ResolveParsedTimestamp turns field values back into the absolute timestamp
// they describe. It is the inverse of ParseTimestampMultiRoot.
func ResolveParsedTimestamp(units []Unit, fields map[string]FieldValue) int64 {
	return NewCalendar(WorldCalendar{Units: units}).Resolve(fields)
}

// GetOffsetInCycle returns where the index-th slot of unitID's bucket starts,
// measured from the start of the enclosing visible instance (or from
// absolute zero when only hidden units sit above it). The enclosing unit is
// found through each unit's first declared parent.
func GetOffsetInCycle(units []Unit, unitID string, index int64) int64 {
	c := NewCalendar(WorldCalendar{Units: units})
	u, ok := c.units[unitID]
	if !ok {
		return 0
	}
	ctx := u
	for {
		parents := c.parents[ctx.ID]
		if len(parents) == 0 {
			break
		}
		ctx = parents[0]
		if !ctx.IsHidden() {
			break
		}
	}
	if ctx == u {
		return index * u.Duration
	}
	return c.offsetInContext(ctx, u, index)
}

// offsetInContext places the index-th slot of u's bucket inside repeating
// instances of ctx. Indexes outside one instance wrap into neighbouring
// instances.
func (c *Calendar) offsetInContext(ctx, u *Unit, index int64) int64 {
	bucket := c.buckets[u.ID]
	per := c.counts[ctx.ID][bucket]
	if per == 0 {
		return index * u.Duration
	}
	cycles := floorDiv(index, per)
	_, offset, _ := c.nthBucketSlot(ctx, bucket, index-cycles*per)
	return cycles*ctx.Duration + offset
}

// resolveNode is one field taking part in resolution.
type resolveNode struct {
	unit    *Unit
	link    string
	kept    bool
	contrib int64
}

// Resolve sums the contribution of every field. Hidden fields whose slots are
// already counted by a visible descendant are ignored. Fields are grouped by
// the visible ancestor they count inside; when several unrelated groups are
// present only the one holding the shortest unit is used.
func (c *Calendar) Resolve(fields map[string]FieldValue) int64 {
	var nodes []*resolveNode
	byID := make(map[string]*resolveNode)
	for _, u := range c.ordered {
		fv, ok := fields[u.ID]
		if !ok {
			continue
		}
		n := &resolveNode{unit: u}
		if u.IsHidden() {
			n.kept = !c.hasVisibleDescendant(u, fields, 0)
			n.link, n.contrib = c.hiddenContribution(u, fv.Value, fields)
		} else {
			n.kept = true
			n.link, n.contrib = c.visibleContribution(u, fv.Value, fields)
		}
		nodes = append(nodes, n)
		byID[u.ID] = n
	}

	top := func(n *resolveNode) string {
		id := n.unit.ID
		for steps := 0; steps <= len(nodes); steps++ {
			next, ok := byID[id]
			if !ok || next.link == "" {
				return id
			}
			id = next.link
		}
		return id
	}

	var smallest *resolveNode
	for _, n := range nodes {
		if n.kept && (smallest == nil || n.unit.Duration < smallest.unit.Duration) {
			smallest = n
		}
	}
	if smallest == nil {
		return 0
	}
	group := top(smallest)

	var total int64
	for _, n := range nodes {
		if n.kept && top(n) == group {
			total += n.contrib
		}
	}
	return total
}

// visibleContribution finds the visible ancestor u counts inside (through
// hidden parents, present or not) and returns its id with u's offset.
func (c *Calendar) visibleContribution(u *Unit, value int64, fields map[string]FieldValue) (string, int64) {
	ctx, root := c.visibleContext(u, fields, 0)
	switch {
	case ctx != nil:
		return ctx.ID, c.offsetInContext(ctx, u, value)
	case root != nil && root != u:
		return "", c.offsetInContext(root, u, value)
	default:
		return "", value * u.Duration
	}
}

// visibleContext returns the nearest present visible ancestor of u. When
// none exists it returns the first root reachable through hidden parents
// only; both are nil when u hangs below an absent visible unit.
func (c *Calendar) visibleContext(u *Unit, fields map[string]FieldValue, depth int) (ctx, root *Unit) {
	parents := c.parents[u.ID]
	if len(parents) == 0 {
		return nil, u
	}
	if depth > len(c.ordered) {
		return nil, nil
	}
	for _, p := range parents {
		if !p.IsHidden() {
			if _, ok := fields[p.ID]; ok {
				return p, nil
			}
			continue
		}
		pctx, proot := c.visibleContext(p, fields, depth+1)
		if pctx != nil {
			return pctx, nil
		}
		if root == nil {
			root = proot
		}
	}
	return nil, root
}

// hiddenContribution places a hidden field with no visible descendant
// inside its first present parent.
func (c *Calendar) hiddenContribution(u *Unit, value int64, fields map[string]FieldValue) (string, int64) {
	for _, p := range c.parents[u.ID] {
		if _, ok := fields[p.ID]; !ok {
			continue
		}
		var start int64
		for _, rel := range c.children[p.ID] {
			if rel.ChildUnitID == u.ID {
				break
			}
			start += c.relationSpan(rel)
		}
		return p.ID, start + value*u.Duration
	}
	return "", value * u.Duration
}

// hasVisibleDescendant reports whether a visible field sits below u, looking
// through hidden children whether or not they are present.
func (c *Calendar) hasVisibleDescendant(u *Unit, fields map[string]FieldValue, depth int) bool {
	if depth > len(c.ordered) {
		return false
	}
	for _, rel := range c.children[u.ID] {
		child := c.units[rel.ChildUnitID]
		if !child.IsHidden() {
			if _, ok := fields[child.ID]; ok {
				return true
			}
			continue
		}
		if c.hasVisibleDescendant(child, fields, depth+1) {
			return true
		}
	}
	return false
}
