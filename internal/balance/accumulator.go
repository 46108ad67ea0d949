package balance

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// counterSet holds the dense per-cell-hour counters for one aggregation
// call. Counters are flat buffers of size 24*cols*rows addressed by
// hour*cols*rows + cx*rows + cy. Each slot is an independent memory
// location mutated only through atomic add, so workers never lock.
type counterSet struct {
	grid    Grid
	supply  []int64
	demand  []int64
	dropped atomic.Int64
}

func newCounterSet(grid Grid) *counterSet {
	size := hoursPerDay * grid.Cols * grid.Rows
	return &counterSet{
		grid:   grid,
		supply: make([]int64, size),
		demand: make([]int64, size),
	}
}

func (c *counterSet) slot(hour, cx, cy int) int {
	return hour*c.grid.Cols*c.grid.Rows + cx*c.grid.Rows + cy
}

// add tallies one event. Events whose cell index lands outside grid bounds
// (floating-point edge effects at the envelope boundary) are counted as
// dropped and excluded.
func (c *counterSet) add(ev Event) {
	cx, cy := c.grid.CellIndex(ev.X, ev.Y)
	if !c.grid.Contains(cx, cy) {
		c.dropped.Add(1)
		return
	}
	i := c.slot(ev.Hour, cx, cy)
	if ev.Kind == Supply {
		atomic.AddInt64(&c.supply[i], 1)
	} else {
		atomic.AddInt64(&c.demand[i], 1)
	}
}

// accumulate fans the event slice out across a worker pool with static
// range partitioning. Any partitioning is valid: increments to the same
// counter commute, so the final counts are order-independent. Wait is the
// barrier between accumulation and classification; no counter is read
// before every worker has retired.
func (c *counterSet) accumulate(ctx context.Context, events []Event, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(events) {
		workers = len(events)
	}
	if workers == 0 {
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	chunk := (len(events) + workers - 1) / workers
	for start := 0; start < len(events); start += chunk {
		end := start + chunk
		if end > len(events) {
			end = len(events)
		}
		part := events[start:end]
		g.Go(func() error {
			for _, ev := range part {
				c.add(ev)
			}
			return nil
		})
	}
	return g.Wait()
}
