package main

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/config"
	"github.com/sells-group/zonebalance-cli/internal/ingest"
	"github.com/sells-group/zonebalance-cli/internal/projection"
	"github.com/sells-group/zonebalance-cli/internal/render"
)

var (
	aggInput        string
	aggHTMLOut      string
	aggGeoJSONOut   string
	aggShapefileOut string
	aggTop          int
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate a CSV of events into classified zone balances",
	Long:  "Reads hour,lat,lon,kind records, projects them onto a metric grid, and prints the per-cell-hour supply/demand classification. Optional flags export the result as an HTML map, GeoJSON, or a shapefile.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Validate(cfg, "aggregate"); err != nil {
			return err
		}

		out, err := runAggregation(cmd.Context(), aggInput, cfg)
		if err != nil {
			return err
		}

		printSummary(out, aggTop)

		if aggHTMLOut != "" {
			if err := writeArtifact(aggHTMLOut, func(f *os.File) error {
				meta := render.Meta{
					CellSize:       cfg.Engine.CellSize,
					CapacityFactor: cfg.Engine.CapacityFactor,
					Threshold:      cfg.Engine.ActivityThreshold,
				}
				return render.WriteHTML(f, out.Results, out.Grid, out.Proj, meta)
			}); err != nil {
				return err
			}
			zap.L().Info("wrote html map", zap.String("path", aggHTMLOut))
		}

		if aggGeoJSONOut != "" {
			if err := writeArtifact(aggGeoJSONOut, func(f *os.File) error {
				return render.WriteGeoJSON(f, out.Results, out.Grid, out.Proj)
			}); err != nil {
				return err
			}
			zap.L().Info("wrote geojson", zap.String("path", aggGeoJSONOut))
		}

		if aggShapefileOut != "" {
			if err := render.WriteShapefile(aggShapefileOut, out.Results, out.Grid, out.Proj); err != nil {
				return err
			}
			zap.L().Info("wrote shapefile", zap.String("path", aggShapefileOut))
		}

		return nil
	},
}

func init() {
	aggregateCmd.Flags().StringVar(&aggInput, "input", "", "path to events CSV (required)")
	_ = aggregateCmd.MarkFlagRequired("input")
	aggregateCmd.Flags().StringVar(&aggHTMLOut, "html", "", "write an HTML map to this path")
	aggregateCmd.Flags().StringVar(&aggGeoJSONOut, "geojson", "", "write GeoJSON to this path")
	aggregateCmd.Flags().StringVar(&aggShapefileOut, "shapefile", "", "write a shapefile to this path")
	aggregateCmd.Flags().IntVar(&aggTop, "top", 10, "number of worst-deficit zones to list")
	rootCmd.AddCommand(aggregateCmd)
}

// aggregationOutput bundles everything downstream consumers need: the
// sorted results plus the grid and projection used to produce them.
type aggregationOutput struct {
	Results []balance.ZoneResult
	Grid    balance.Grid
	Proj    projection.Projector
	Report  *ingest.Report
	Elapsed time.Duration
}

// runAggregation runs the full CSV-to-classification pipeline.
func runAggregation(ctx context.Context, path string, cfg *config.Config) (*aggregationOutput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open input %s", path)
	}
	defer f.Close()

	events, proj, report, err := ingest.ReadEvents(ctx, f, ingest.Options{RefLat: cfg.Ingest.RefLat})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, eris.Errorf("no usable events in %s (%d rejected)", path, report.Rejected)
	}

	origin, err := balance.CalculateBoundingBox(events)
	if err != nil {
		return nil, err
	}
	grid, err := balance.NewGrid(origin, cfg.Engine.CellSize)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := balance.Aggregate(ctx, events, origin, cfg.Engine.CellSize, balance.Options{
		CapacityFactor:       cfg.Engine.CapacityFactor,
		MinActivityThreshold: cfg.Engine.ActivityThreshold,
		Workers:              cfg.Engine.Workers,
	})
	if err != nil {
		return nil, err
	}
	balance.SortResults(results)

	return &aggregationOutput{
		Results: results,
		Grid:    grid,
		Proj:    proj,
		Report:  report,
		Elapsed: time.Since(start),
	}, nil
}

// statusCounts tallies results by status.
func statusCounts(results []balance.ZoneResult) map[balance.ZoneStatus]int {
	counts := make(map[balance.ZoneStatus]int, 4)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// worstDeficits returns the n active zones with the largest unmet demand.
func worstDeficits(results []balance.ZoneResult, n int) []balance.ZoneResult {
	deficits := make([]balance.ZoneResult, 0, len(results))
	for _, r := range results {
		if r.Status == balance.StatusNetDemand {
			deficits = append(deficits, r)
		}
	}
	sort.Slice(deficits, func(i, j int) bool {
		return deficits[i].Net() < deficits[j].Net()
	})
	if len(deficits) > n {
		deficits = deficits[:n]
	}
	return deficits
}

// printSummary writes the human-readable run summary to stdout.
func printSummary(out *aggregationOutput, top int) {
	p := message.NewPrinter(language.English)
	counts := statusCounts(out.Results)

	p.Printf("events: %d accepted, %d rejected\n", out.Report.Accepted, out.Report.Rejected)
	p.Printf("grid: %d x %d cells of %.0fm, aggregated in %s\n",
		out.Grid.Cols, out.Grid.Rows, out.Grid.CellSize, out.Elapsed.Round(time.Millisecond))
	p.Printf("zones: %d active cell-hours\n", len(out.Results))
	p.Printf("  net supply:  %d\n", counts[balance.StatusNetSupply])
	p.Printf("  net demand:  %d\n", counts[balance.StatusNetDemand])
	p.Printf("  balanced:    %d\n", counts[balance.StatusBalanced])
	p.Printf("  unsupported: %d\n", counts[balance.StatusUnsupported])

	deficits := worstDeficits(out.Results, top)
	if len(deficits) > 0 {
		p.Printf("worst deficits:\n")
		for _, r := range deficits {
			p.Printf("  cell (%d,%d) hour %02d: demand %d vs effective supply %d (net %d)\n",
				r.CellX, r.CellY, r.Hour, r.Demand, r.EffectiveSupply, r.Net())
		}
	}
}

// writeArtifact creates path and hands the file to write.
func writeArtifact(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}
