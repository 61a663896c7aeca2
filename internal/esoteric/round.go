package esoteric

// Floor returns the start of the instance of unitID's bucket containing the
// absolute time t.
func (c *Calendar) Floor(unitID string, t int64) (int64, error) {
	f, err := c.match(unitID, t)
	if err != nil {
		return t, err
	}
	path, ok := c.lineage(f.Unit, t)
	if !ok {
		return t, unreachableUnit(unitID, t)
	}
	return path[len(path)-1].start, nil
}

// Round returns whichever boundary of the containing instance is strictly
// closer to t. An exact midpoint rounds down to the instance start.
func (c *Calendar) Round(unitID string, t int64) (int64, error) {
	f, err := c.match(unitID, t)
	if err != nil {
		return t, err
	}
	path, ok := c.lineage(f.Unit, t)
	if !ok {
		return t, unreachableUnit(unitID, t)
	}
	lo := path[len(path)-1].start
	hi := lo + f.Unit.Duration
	if hi-t < t-lo {
		return hi, nil
	}
	return lo, nil
}
