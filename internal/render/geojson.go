package render

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/projection"
)

// WriteGeoJSON emits a FeatureCollection with one rectangular polygon
// feature per active cell-hour.
func WriteGeoJSON(w io.Writer, results []balance.ZoneResult, grid balance.Grid, proj projection.Projector) error {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}

	for _, c := range GeoCells(results, grid, proj) {
		poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
			{c.MinLon, c.MinLat},
			{c.MaxLon, c.MinLat},
			{c.MaxLon, c.MaxLat},
			{c.MinLon, c.MaxLat},
			{c.MinLon, c.MinLat},
		}})
		if err != nil {
			return eris.Wrap(err, "render: build cell polygon")
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: poly,
			Properties: map[string]interface{}{
				"cell_x":           c.CellX,
				"cell_y":           c.CellY,
				"hour":             c.Hour,
				"supply":           c.Supply,
				"demand":           c.Demand,
				"effective_supply": c.EffectiveSupply,
				"net":              c.Net(),
				"status":           string(c.Status),
			},
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "render: marshal feature collection")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "render: write geojson")
	}
	return nil
}
