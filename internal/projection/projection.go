// Package projection converts geographic coordinates to a local planar
// metric system. The engine itself only ever sees the projected output.
package projection

import "math"

// earthRadiusM is the mean Earth radius in metres.
const earthRadiusM = 6371000.0

// Projector maps lon/lat degrees to planar metres using an equirectangular
// projection anchored at a reference latitude. Distortion is negligible at
// city scale, which is the intended working extent. The zero latitude
// anchor still yields a valid (equatorial) projection.
//
// Projector is a pure value: Project and Unproject are stateless and safe
// to call from any number of goroutines.
type Projector struct {
	refLat float64
	cosRef float64
}

// New returns a Projector anchored at refLat degrees.
func New(refLat float64) Projector {
	return Projector{
		refLat: refLat,
		cosRef: math.Cos(refLat * math.Pi / 180),
	}
}

// RefLat returns the anchor latitude in degrees.
func (p Projector) RefLat() float64 {
	return p.refLat
}

// Project converts lon/lat degrees to planar (x, y) metres.
func (p Projector) Project(lon, lat float64) (x, y float64) {
	x = earthRadiusM * lon * math.Pi / 180 * p.cosRef
	y = earthRadiusM * lat * math.Pi / 180
	return x, y
}

// Unproject is the inverse of Project. It is used only by rendering and
// export collaborators to rebuild geographic cell boxes for display.
func (p Projector) Unproject(x, y float64) (lon, lat float64) {
	lon = x / (earthRadiusM * p.cosRef) * 180 / math.Pi
	lat = y / earthRadiusM * 180 / math.Pi
	return lon, lat
}
