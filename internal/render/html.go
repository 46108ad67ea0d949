package render

import (
	"encoding/json"
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/projection"
)

// WriteHTML emits a self-contained Leaflet page: one rectangle per active
// cell-hour, colored by status, with an hour slider filtering the display.
func WriteHTML(w io.Writer, results []balance.ZoneResult, grid balance.Grid, proj projection.Projector, meta Meta) error {
	cells := GeoCells(results, grid, proj)

	cellJSON, err := json.Marshal(cells)
	if err != nil {
		return eris.Wrap(err, "render: marshal cells")
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return eris.Wrap(err, "render: marshal meta")
	}

	data := struct {
		Cells template.JS
		Meta  template.JS
		RunID string
	}{
		Cells: template.JS(cellJSON),
		Meta:  template.JS(metaJSON),
		RunID: meta.RunID,
	}
	if err := mapTemplate.Execute(w, data); err != nil {
		return eris.Wrap(err, "render: execute map template")
	}
	return nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Zone balance map</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  #panel {
    position: absolute; top: 10px; right: 10px; z-index: 1000;
    background: #fff; padding: 10px 14px; border-radius: 4px;
    box-shadow: 0 1px 4px rgba(0,0,0,0.3); font: 13px sans-serif;
  }
  #panel .swatch { display: inline-block; width: 12px; height: 12px; margin-right: 4px; }
</style>
</head>
<body>
<!-- run {{.RunID}} -->
<div id="map"></div>
<div id="panel">
  <div><strong>Hour: <span id="hourLabel">8</span></strong></div>
  <input id="hour" type="range" min="0" max="23" value="8" style="width: 180px">
  <div><span class="swatch" style="background:#2c7fb8"></span>net supply</div>
  <div><span class="swatch" style="background:#d7301f"></span>net demand</div>
  <div><span class="swatch" style="background:#31a354"></span>balanced</div>
  <div><span class="swatch" style="background:#bdbdbd"></span>unsupported</div>
</div>
<script>
var cells = {{.Cells}};
var meta = {{.Meta}};

var colors = {
  net_supply: "#2c7fb8",
  net_demand: "#d7301f",
  balanced: "#31a354",
  unsupported: "#bdbdbd"
};

var map = L.map("map");
L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);

if (cells.length > 0) {
  var bounds = L.latLngBounds(cells.map(function (c) {
    return [[c.min_lat, c.min_lon], [c.max_lat, c.max_lon]];
  }).flat());
  map.fitBounds(bounds);
} else {
  map.setView([0, 0], 2);
}

var layer = L.layerGroup().addTo(map);

function draw(hour) {
  layer.clearLayers();
  cells.forEach(function (c) {
    if (c.hour !== hour) return;
    L.rectangle([[c.min_lat, c.min_lon], [c.max_lat, c.max_lon]], {
      color: colors[c.status],
      weight: 1,
      fillOpacity: 0.45
    }).bindPopup(
      "cell (" + c.cell_x + "," + c.cell_y + ") hour " + c.hour +
      "<br>supply " + c.supply + " (effective " + c.effective_supply + ")" +
      "<br>demand " + c.demand +
      "<br>status " + c.status
    ).addTo(layer);
  });
}

var slider = document.getElementById("hour");
slider.addEventListener("input", function () {
  document.getElementById("hourLabel").textContent = slider.value;
  draw(parseInt(slider.value, 10));
});
draw(8);
</script>
</body>
</html>
`))
