package balance

import "math"

// classify applies the capacity model to one cell-hour's raw counts.
// Rules, in precedence order:
//   - unsupported: supply+demand below the activity threshold, regardless
//     of the net sign (counts too sparse to trust)
//   - net_supply: effectiveSupply - demand > 0
//   - net_demand: effectiveSupply - demand < 0
//   - balanced: effectiveSupply == demand
func classify(supply, demand int, capacityFactor float64, minActivity int) (int, ZoneStatus) {
	effective := int(math.Round(float64(supply) * capacityFactor))
	net := effective - demand

	var status ZoneStatus
	switch {
	case supply+demand < minActivity:
		status = StatusUnsupported
	case net > 0:
		status = StatusNetSupply
	case net < 0:
		status = StatusNetDemand
	default:
		status = StatusBalanced
	}
	return effective, status
}

// reduce walks every (hour, cellX, cellY) triple exactly once and emits
// the sparse result set: cell-hours with zero activity produce no record,
// so the output is proportional to activity, not grid size. Single-threaded
// by design; cost is bounded by grid size, not event volume. Runs strictly
// after accumulate has joined, so the counters are read-only here.
func (c *counterSet) reduce(capacityFactor float64, minActivity int) []ZoneResult {
	results := make([]ZoneResult, 0, 256)
	for hour := 0; hour < hoursPerDay; hour++ {
		for cx := 0; cx < c.grid.Cols; cx++ {
			for cy := 0; cy < c.grid.Rows; cy++ {
				i := c.slot(hour, cx, cy)
				supply := int(c.supply[i])
				demand := int(c.demand[i])
				if supply+demand == 0 {
					continue
				}
				effective, status := classify(supply, demand, capacityFactor, minActivity)
				results = append(results, ZoneResult{
					CellX:           cx,
					CellY:           cy,
					Hour:            hour,
					Supply:          supply,
					Demand:          demand,
					EffectiveSupply: effective,
					Status:          status,
				})
			}
		}
	}
	return results
}
