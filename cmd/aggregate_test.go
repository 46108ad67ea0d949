package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/config"
	"github.com/sells-group/zonebalance-cli/internal/gen"
)

// testConfig returns engine defaults for pipeline tests.
func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			CellSize:          500,
			CapacityFactor:    2.0,
			ActivityThreshold: 5,
			Workers:           4,
		},
	}
}

// writeEventsCSV generates a synthetic dataset to a temp file.
func writeEventsCSV(t *testing.T, count int) string {
	t.Helper()
	rows, err := gen.Events(gen.Config{
		Count:    count,
		Seed:     99,
		Hotspots: gen.DefaultHotspots(37.7749, -122.4194),
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "events.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, gen.WriteCSV(f, rows))
	return path
}

func TestRunAggregation(t *testing.T) {
	path := writeEventsCSV(t, 5000)

	out, err := runAggregation(context.Background(), path, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 5000, out.Report.Accepted)
	assert.NotEmpty(t, out.Results)
	assert.Positive(t, out.Grid.Cols)
	assert.Positive(t, out.Grid.Rows)

	// Results come back in canonical display order.
	for i := 1; i < len(out.Results); i++ {
		prev, cur := out.Results[i-1], out.Results[i]
		if prev.Hour != cur.Hour {
			assert.Less(t, prev.Hour, cur.Hour)
		}
	}

	// Conservation through the whole pipeline.
	var total int
	for _, r := range out.Results {
		total += r.Supply + r.Demand
	}
	dropped := out.Report.Accepted - total
	assert.GreaterOrEqual(t, dropped, 0)
	assert.LessOrEqual(t, dropped, 4, "only envelope-edge events may be dropped")
}

func TestRunAggregationMissingFile(t *testing.T) {
	_, err := runAggregation(context.Background(), "/nonexistent/events.csv", testConfig())
	assert.Error(t, err)
}

func TestRunAggregationNoUsableEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("hour,lat,lon,kind\n99,1,1,supply\n"), 0o644))

	_, err := runAggregation(context.Background(), path, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable events")
}

func TestStatusCounts(t *testing.T) {
	results := []balance.ZoneResult{
		{Status: balance.StatusNetSupply},
		{Status: balance.StatusNetSupply},
		{Status: balance.StatusNetDemand},
		{Status: balance.StatusUnsupported},
	}
	counts := statusCounts(results)
	assert.Equal(t, 2, counts[balance.StatusNetSupply])
	assert.Equal(t, 1, counts[balance.StatusNetDemand])
	assert.Equal(t, 0, counts[balance.StatusBalanced])
	assert.Equal(t, 1, counts[balance.StatusUnsupported])
}

func TestWorstDeficits(t *testing.T) {
	results := []balance.ZoneResult{
		{CellX: 1, Demand: 20, EffectiveSupply: 2, Status: balance.StatusNetDemand},  // net -18
		{CellX: 2, Demand: 10, EffectiveSupply: 8, Status: balance.StatusNetDemand},  // net -2
		{CellX: 3, Demand: 15, EffectiveSupply: 5, Status: balance.StatusNetDemand},  // net -10
		{CellX: 4, Demand: 1, EffectiveSupply: 20, Status: balance.StatusNetSupply},  // not a deficit
		{CellX: 5, Demand: 3, EffectiveSupply: 1, Status: balance.StatusUnsupported}, // below threshold
	}

	deficits := worstDeficits(results, 2)
	require.Len(t, deficits, 2)
	assert.Equal(t, 1, deficits[0].CellX)
	assert.Equal(t, 3, deficits[1].CellX)
}
