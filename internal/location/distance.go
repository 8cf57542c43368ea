package location

import (
	"math"

	"wander/internal/model"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in kilometers between two points.
func Haversine(a, b model.GeoPoint) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// RoundKm rounds a distance to the one-decimal display precision.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// Annotate returns a copy of places with DistanceKm set relative to ref.
// With no usable reference every distance is left unset. A place with
// malformed coordinates only loses its own distance.
func Annotate(places []model.Place, ref *model.GeoPoint) []model.Place {
	out := make([]model.Place, len(places))
	copy(out, places)

	for i := range out {
		out[i].DistanceKm = nil
		if ref == nil || !ref.Valid() || !out[i].Location.Valid() {
			continue
		}
		d := RoundKm(Haversine(*ref, out[i].Location))
		out[i].DistanceKm = &d
	}
	return out
}
