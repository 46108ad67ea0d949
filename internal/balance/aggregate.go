package balance

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Engine defaults.
const (
	DefaultCapacityFactor       = 2.0
	DefaultMinActivityThreshold = 5
)

// Options tune one aggregation call. Zero values fall back to defaults.
type Options struct {
	// CapacityFactor is the average completed trips per available driver
	// per hour: one supply event can satisfy this many demand events.
	CapacityFactor float64

	// MinActivityThreshold is the minimum supply+demand total before a
	// cell-hour's balance is considered statistically meaningful.
	MinActivityThreshold int

	// Workers is the accumulation pool size; 0 means runtime.NumCPU().
	Workers int
}

func (o Options) withDefaults() Options {
	if o.CapacityFactor == 0 {
		o.CapacityFactor = DefaultCapacityFactor
	}
	if o.MinActivityThreshold == 0 {
		o.MinActivityThreshold = DefaultMinActivityThreshold
	}
	return o
}

// Aggregate bins events into the metric grid defined by origin and
// cellSize, tallies per-cell-hour supply/demand counts across a worker
// pool, and classifies every active cell-hour. It is a closed batch
// operation: no intermediate counts are observable, and the counter
// buffers live only for the duration of the call.
//
// The result set is unordered; use SortResults for the canonical display
// order. An empty event slice returns an empty result, not an error.
// A non-positive cellSize is a configuration error and is rejected
// before any work begins.
func Aggregate(ctx context.Context, events []Event, origin GridOrigin, cellSize float64, opts Options) ([]ZoneResult, error) {
	opts = opts.withDefaults()

	grid, err := NewGrid(origin, cellSize)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return []ZoneResult{}, nil
	}

	counters := newCounterSet(grid)
	if err := counters.accumulate(ctx, events, opts.Workers); err != nil {
		return nil, eris.Wrap(err, "balance: accumulate events")
	}

	if n := counters.dropped.Load(); n > 0 {
		zap.L().Debug("balance: dropped events outside grid bounds",
			zap.Int64("dropped", n),
			zap.Int("grid_cols", grid.Cols),
			zap.Int("grid_rows", grid.Rows),
		)
	}

	return counters.reduce(opts.CapacityFactor, opts.MinActivityThreshold), nil
}
