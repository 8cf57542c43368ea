package mapview

import (
	"math"

	"wander/internal/model"
)

const (
	tileSize = 256.0
	// cellPx is the map width of one terminal column in Web Mercator pixels.
	// Rows are twice as tall.
	cellPx = 8.0

	maxLat = 85.05112878

	MinZoom = 2
	MaxZoom = 19
)

func worldSize(zoom int) float64 {
	return tileSize * math.Exp2(float64(zoom))
}

// project maps p to world pixel coordinates at zoom.
func project(p model.GeoPoint, zoom int) (x, y float64) {
	world := worldSize(zoom)
	lat := math.Max(-maxLat, math.Min(maxLat, p.Lat))
	siny := math.Sin(lat * math.Pi / 180)
	x = (p.Lng + 180) / 360 * world
	y = (0.5 - math.Log((1+siny)/(1-siny))/(4*math.Pi)) * world
	return x, y
}

// unproject is the inverse of project. Longitudes wrap into [-180, 180).
func unproject(x, y float64, zoom int) model.GeoPoint {
	world := worldSize(zoom)
	lng := x/world*360 - 180
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	lng -= 180

	n := math.Pi - 2*math.Pi*y/world
	lat := 180 / math.Pi * math.Atan(math.Sinh(n))
	return model.GeoPoint{Lat: lat, Lng: lng}
}

// metersPerCell is the ground width of one column at lat.
func metersPerCell(lat float64, zoom int) float64 {
	return 156543.03392 * math.Cos(lat*math.Pi/180) / math.Exp2(float64(zoom)) * cellPx
}
