// Package gen produces synthetic supply/demand event datasets for trying
// out the aggregation pipeline without real trip data.
package gen

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/rotisserie/eris"
)

// Hotspot is a center of activity events scatter around.
type Hotspot struct {
	Lat      float64
	Lon      float64
	SpreadKM float64 // standard deviation of the scatter
	Weight   float64 // relative share of events drawn to this hotspot
}

// Config controls one synthetic dataset.
type Config struct {
	Count       int
	Seed        int64
	SupplyRatio float64 // fraction of events that are supply; default 0.5
	Hotspots    []Hotspot
}

// Row is one generated record in CSV column order (hour, lat, lon, kind).
type Row struct {
	Hour int
	Lat  float64
	Lon  float64
	Kind string
}

// hourWeights shapes demand over the day: morning and evening commute
// peaks, a quiet overnight trough.
var hourWeights = [24]float64{
	1, 0.5, 0.3, 0.2, 0.3, 1, 3, 6, 8, 5, 3, 3,
	4, 3, 3, 4, 6, 8, 9, 7, 5, 4, 3, 2,
}

// kmPerDegreeLat is the approximate latitude extent of one kilometre.
const kmPerDegreeLat = 1.0 / 111.2

// DefaultHotspots returns a plausible three-center city layout around the
// given downtown coordinate.
func DefaultHotspots(centerLat, centerLon float64) []Hotspot {
	return []Hotspot{
		{Lat: centerLat, Lon: centerLon, SpreadKM: 1.5, Weight: 5},               // downtown
		{Lat: centerLat + 0.04, Lon: centerLon - 0.03, SpreadKM: 2.5, Weight: 2}, // residential north-west
		{Lat: centerLat - 0.05, Lon: centerLon + 0.06, SpreadKM: 1.0, Weight: 1}, // airport
	}
}

// Events generates cfg.Count rows. The same seed always produces the same
// dataset.
func Events(cfg Config) ([]Row, error) {
	if cfg.Count <= 0 {
		return nil, eris.Errorf("gen: count must be positive, got %d", cfg.Count)
	}
	if len(cfg.Hotspots) == 0 {
		return nil, eris.New("gen: at least one hotspot is required")
	}
	supplyRatio := cfg.SupplyRatio
	if supplyRatio == 0 {
		supplyRatio = 0.5
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	var totalWeight float64
	for _, h := range cfg.Hotspots {
		totalWeight += h.Weight
	}

	rows := make([]Row, cfg.Count)
	for i := range rows {
		h := pickHotspot(rng, cfg.Hotspots, totalWeight)
		spreadDeg := h.SpreadKM * kmPerDegreeLat

		lat := h.Lat + rng.NormFloat64()*spreadDeg
		lon := h.Lon + rng.NormFloat64()*spreadDeg/math.Cos(h.Lat*math.Pi/180)

		kind := "demand"
		if rng.Float64() < supplyRatio {
			kind = "supply"
		}

		rows[i] = Row{Hour: pickHour(rng), Lat: lat, Lon: lon, Kind: kind}
	}
	return rows, nil
}

// pickHotspot draws a hotspot proportionally to its weight.
func pickHotspot(rng *rand.Rand, hotspots []Hotspot, totalWeight float64) Hotspot {
	target := rng.Float64() * totalWeight
	for _, h := range hotspots {
		target -= h.Weight
		if target <= 0 {
			return h
		}
	}
	return hotspots[len(hotspots)-1]
}

// pickHour draws an hour-of-day from the commute-shaped distribution.
func pickHour(rng *rand.Rand) int {
	var total float64
	for _, w := range hourWeights {
		total += w
	}
	target := rng.Float64() * total
	for hour, w := range hourWeights {
		target -= w
		if target <= 0 {
			return hour
		}
	}
	return 23
}

// WriteCSV writes rows with the header the ingest package expects.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "lat", "lon", "kind"}); err != nil {
		return eris.Wrap(err, "gen: write csv header")
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Hour),
			strconv.FormatFloat(row.Lat, 'f', 6, 64),
			strconv.FormatFloat(row.Lon, 'f', 6, 64),
			row.Kind,
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "gen: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "gen: flush csv")
}
