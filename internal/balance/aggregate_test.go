package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repeat builds n copies of an event.
func repeat(ev Event, n int) []Event {
	events := make([]Event, n)
	for i := range events {
		events[i] = ev
	}
	return events
}

func TestAggregateScenario(t *testing.T) {
	// Origin (0,0), cell 500m, factor 2.0, threshold 5.
	// Hour 8: 3 supply + 2 demand in cell (0,0) -> total 5, classified;
	// effective = round(3*2.0) = 6, net = 4 -> net_supply.
	// Hour 9: 2 supply + 1 demand -> total 3 < 5 -> unsupported.
	origin := GridOrigin{MinX: 0, MinY: 0, Width: 1000, Height: 1000}

	var events []Event
	events = append(events, repeat(Event{X: 100, Y: 100, Hour: 8, Kind: Supply}, 3)...)
	events = append(events, repeat(Event{X: 200, Y: 200, Hour: 8, Kind: Demand}, 2)...)
	events = append(events, repeat(Event{X: 100, Y: 100, Hour: 9, Kind: Supply}, 2)...)
	events = append(events, repeat(Event{X: 200, Y: 200, Hour: 9, Kind: Demand}, 1)...)

	results, err := Aggregate(context.Background(), events, origin, 500, Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	SortResults(results)

	hour8 := results[0]
	assert.Equal(t, 8, hour8.Hour)
	assert.Equal(t, 0, hour8.CellX)
	assert.Equal(t, 0, hour8.CellY)
	assert.Equal(t, 3, hour8.Supply)
	assert.Equal(t, 2, hour8.Demand)
	assert.Equal(t, 6, hour8.EffectiveSupply)
	assert.Equal(t, 4, hour8.Net())
	assert.Equal(t, StatusNetSupply, hour8.Status)

	hour9 := results[1]
	assert.Equal(t, 9, hour9.Hour)
	assert.Equal(t, StatusUnsupported, hour9.Status)
}

func TestAggregateCapacityFactorBreaksNaiveEquality(t *testing.T) {
	// 4 supply + 4 demand at hour 10: effective = round(4*2.0) = 8,
	// net = 4 -> net_supply, not balanced.
	origin := GridOrigin{Width: 500, Height: 500}
	var events []Event
	events = append(events, repeat(Event{X: 10, Y: 10, Hour: 10, Kind: Supply}, 4)...)
	events = append(events, repeat(Event{X: 10, Y: 10, Hour: 10, Kind: Demand}, 4)...)

	results, err := Aggregate(context.Background(), events, origin, 500, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusNetSupply, results[0].Status)
	assert.Equal(t, 8, results[0].EffectiveSupply)
}

func TestAggregateSparsity(t *testing.T) {
	events, origin := randomEvents(t, 2000, 7)
	grid, err := NewGrid(origin, 400)
	require.NoError(t, err)

	results, err := Aggregate(context.Background(), events, origin, 400, Options{Workers: 8})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(results), hoursPerDay*grid.Cols*grid.Rows)
	for _, r := range results {
		assert.Positive(t, r.Supply+r.Demand, "no record for inactive cell-hours")
	}
}

func TestAggregateConservation(t *testing.T) {
	events, origin := randomEvents(t, 4000, 11)
	results, err := Aggregate(context.Background(), events, origin, 300, Options{Workers: 16, MinActivityThreshold: 1})
	require.NoError(t, err)

	grid, err := NewGrid(origin, 300)
	require.NoError(t, err)

	var wantSupply, wantDemand, gotSupply, gotDemand int
	for _, ev := range events {
		if cx, cy := grid.CellIndex(ev.X, ev.Y); !grid.Contains(cx, cy) {
			continue
		}
		if ev.Kind == Supply {
			wantSupply++
		} else {
			wantDemand++
		}
	}
	for _, r := range results {
		gotSupply += r.Supply
		gotDemand += r.Demand
	}
	assert.Equal(t, wantSupply, gotSupply)
	assert.Equal(t, wantDemand, gotDemand)
}

func TestAggregateEmptyEvents(t *testing.T) {
	results, err := Aggregate(context.Background(), nil, GridOrigin{Width: 1000, Height: 1000}, 500, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAggregateRejectsBadCellSize(t *testing.T) {
	_, err := Aggregate(context.Background(), []Event{{X: 1, Y: 1}}, GridOrigin{Width: 10, Height: 10}, 0, Options{})
	assert.Error(t, err)

	_, err = Aggregate(context.Background(), []Event{{X: 1, Y: 1}}, GridOrigin{Width: 10, Height: 10}, -5, Options{})
	assert.Error(t, err)
}

func TestSortResults(t *testing.T) {
	results := []ZoneResult{
		{Hour: 9, CellX: 0, CellY: 0},
		{Hour: 8, CellX: 1, CellY: 2},
		{Hour: 8, CellX: 1, CellY: 0},
		{Hour: 8, CellX: 0, CellY: 5},
	}
	SortResults(results)

	want := []ZoneResult{
		{Hour: 8, CellX: 0, CellY: 5},
		{Hour: 8, CellX: 1, CellY: 0},
		{Hour: 8, CellX: 1, CellY: 2},
		{Hour: 9, CellX: 0, CellY: 0},
	}
	assert.Equal(t, want, results)
}
