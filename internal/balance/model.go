// Package balance implements the supply/demand zone aggregation engine:
// it bins planar-projected, hour-bucketed events into a uniform metric
// grid, tallies per-cell-hour counts concurrently, and classifies each
// active cell-hour against a configurable capacity model.
package balance

import "sort"

// EventKind distinguishes supply events (a driver becoming available)
// from demand events (a passenger requesting a ride).
type EventKind int

const (
	Supply EventKind = iota
	Demand
)

// String returns the wire name of the kind.
func (k EventKind) String() string {
	if k == Supply {
		return "supply"
	}
	return "demand"
}

// Event is one geolocated occurrence in planar metric coordinates.
// Hour must already be validated to [0,23] by the ingestion layer;
// the engine does not re-check it.
type Event struct {
	X    float64
	Y    float64
	Hour int
	Kind EventKind
}

// ZoneStatus classifies the supply/demand balance of one cell-hour.
type ZoneStatus string

const (
	StatusUnsupported ZoneStatus = "unsupported"
	StatusNetSupply   ZoneStatus = "net_supply"
	StatusNetDemand   ZoneStatus = "net_demand"
	StatusBalanced    ZoneStatus = "balanced"
)

// ZoneResult is the classified outcome for one active cell-hour.
type ZoneResult struct {
	CellX           int        `json:"cell_x"`
	CellY           int        `json:"cell_y"`
	Hour            int        `json:"hour"`
	Supply          int        `json:"supply"`
	Demand          int        `json:"demand"`
	EffectiveSupply int        `json:"effective_supply"`
	Status          ZoneStatus `json:"status"`
}

// Net returns the effective supply surplus (negative means unmet demand).
func (z ZoneResult) Net() int {
	return z.EffectiveSupply - z.Demand
}

// SortResults orders results by (hour, cellX, cellY), the canonical
// display order used by exporters. Aggregate itself returns them unordered.
func SortResults(results []ZoneResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		if a.CellX != b.CellX {
			return a.CellX < b.CellX
		}
		return a.CellY < b.CellY
	})
}
