package balance

import (
	"math"

	"github.com/rotisserie/eris"
)

// hoursPerDay is the number of hour-of-day buckets per grid cell.
const hoursPerDay = 24

// GridOrigin is the bounding envelope of all events in planar metres.
type GridOrigin struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Grid maps planar coordinates to integer cell indices for a fixed origin
// and cell size. It is a pure value; all methods are safe for concurrent use.
type Grid struct {
	Origin   GridOrigin
	CellSize float64
	Cols     int
	Rows     int
}

// NewGrid derives grid dimensions from the origin envelope. Dimensions are
// ceil(extent/cellSize) with a floor of one cell, so every interior event
// indexes in range. cellSize must be positive.
func NewGrid(origin GridOrigin, cellSize float64) (Grid, error) {
	if cellSize <= 0 {
		return Grid{}, eris.Errorf("balance: cell size must be positive, got %g", cellSize)
	}
	cols := int(math.Ceil(origin.Width / cellSize))
	if cols < 1 {
		cols = 1
	}
	rows := int(math.Ceil(origin.Height / cellSize))
	if rows < 1 {
		rows = 1
	}
	return Grid{Origin: origin, CellSize: cellSize, Cols: cols, Rows: rows}, nil
}

// CellIndex maps a planar coordinate to its cell coordinates using floor
// arithmetic. The result may be out of range for coordinates on or beyond
// the envelope's max edge; callers must check Contains before indexing.
func (g Grid) CellIndex(x, y float64) (int, int) {
	cx := int(math.Floor((x - g.Origin.MinX) / g.CellSize))
	cy := int(math.Floor((y - g.Origin.MinY) / g.CellSize))
	return cx, cy
}

// Contains reports whether the cell coordinates fall inside grid bounds.
// An event exactly on the bounding max edge indexes one past the last cell
// and is dropped rather than clamped.
func (g Grid) Contains(cx, cy int) bool {
	return cx >= 0 && cx < g.Cols && cy >= 0 && cy < g.Rows
}

// CellBounds returns the planar box of a cell. Used by exporters to
// reconstruct cell geometry; cells are never stored as shapes.
func (g Grid) CellBounds(cx, cy int) (minX, minY, maxX, maxY float64) {
	minX = g.Origin.MinX + float64(cx)*g.CellSize
	minY = g.Origin.MinY + float64(cy)*g.CellSize
	return minX, minY, minX + g.CellSize, minY + g.CellSize
}

// CalculateBoundingBox computes the minimal envelope of all event
// coordinates in a single pass. An empty event set has no defined
// envelope and is rejected.
func CalculateBoundingBox(events []Event) (GridOrigin, error) {
	if len(events) == 0 {
		return GridOrigin{}, eris.New("balance: cannot compute bounding box of empty event set")
	}
	minX, minY := events[0].X, events[0].Y
	maxX, maxY := minX, minY
	for _, ev := range events[1:] {
		minX = math.Min(minX, ev.X)
		minY = math.Min(minY, ev.Y)
		maxX = math.Max(maxX, ev.X)
		maxY = math.Max(maxY, ev.Y)
	}
	return GridOrigin{
		MinX:   minX,
		MinY:   minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}, nil
}
