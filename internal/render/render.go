// Package render turns classified zone results into visual artifacts:
// a self-contained Leaflet map, GeoJSON, and ESRI shapefiles. It rebuilds
// each cell's geographic box from the grid and the projection inverse;
// the engine itself never stores cell shapes.
package render

import (
	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/projection"
)

// Meta describes the aggregation run an artifact was produced from.
type Meta struct {
	RunID          string  `json:"run_id"`
	CellSize       float64 `json:"cell_size_m"`
	CapacityFactor float64 `json:"capacity_factor"`
	Threshold      int     `json:"activity_threshold"`
}

// GeoCell pairs one zone result with its geographic bounding box.
type GeoCell struct {
	balance.ZoneResult
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// GeoCells reconstructs the geographic box of every result's cell. The
// projection inverse is monotonic, so planar min/max corners map straight
// to geographic min/max corners.
func GeoCells(results []balance.ZoneResult, grid balance.Grid, proj projection.Projector) []GeoCell {
	cells := make([]GeoCell, len(results))
	for i, r := range results {
		minX, minY, maxX, maxY := grid.CellBounds(r.CellX, r.CellY)
		minLon, minLat := proj.Unproject(minX, minY)
		maxLon, maxLat := proj.Unproject(maxX, maxY)
		cells[i] = GeoCell{
			ZoneResult: r,
			MinLat:     minLat,
			MinLon:     minLon,
			MaxLat:     maxLat,
			MaxLon:     maxLon,
		}
	}
	return cells
}
