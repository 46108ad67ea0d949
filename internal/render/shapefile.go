package render

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/projection"
)

// WriteShapefile writes one rectangular polygon per active cell-hour to a
// .shp/.shx/.dbf trio at path, with the counts and status as attributes.
func WriteShapefile(path string, results []balance.ZoneResult, grid balance.Grid, proj projection.Projector) error {
	writer, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "render: create shapefile %s", path)
	}
	defer writer.Close()

	writer.SetFields([]shp.Field{
		shp.NumberField("HOUR", 2),
		shp.NumberField("CELLX", 6),
		shp.NumberField("CELLY", 6),
		shp.NumberField("SUPPLY", 10),
		shp.NumberField("DEMAND", 10),
		shp.NumberField("EFFSUPPLY", 10),
		shp.NumberField("NET", 10),
		shp.StringField("STATUS", 16),
	})

	for row, c := range GeoCells(results, grid, proj) {
		// Outer ring, clockwise per the shapefile spec.
		points := []shp.Point{
			{X: c.MinLon, Y: c.MinLat},
			{X: c.MinLon, Y: c.MaxLat},
			{X: c.MaxLon, Y: c.MaxLat},
			{X: c.MaxLon, Y: c.MinLat},
			{X: c.MinLon, Y: c.MinLat},
		}
		writer.Write(&shp.Polygon{
			Box:       shp.Box{MinX: c.MinLon, MinY: c.MinLat, MaxX: c.MaxLon, MaxY: c.MaxLat},
			NumParts:  1,
			NumPoints: int32(len(points)),
			Parts:     []int32{0},
			Points:    points,
		})

		attrs := []interface{}{
			c.Hour, c.CellX, c.CellY,
			c.Supply, c.Demand, c.EffectiveSupply, c.Net(),
			string(c.Status),
		}
		for col, value := range attrs {
			if err := writer.WriteAttribute(row, col, value); err != nil {
				return eris.Wrapf(err, "render: write attribute row %d col %d", row, col)
			}
		}
	}
	return nil
}
