// Package location turns routing state into coordinates and measures distances.
package location

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"wander/internal/model"
)

// Query parameter keys understood by the explorer.
const (
	ParamLat       = "lat"
	ParamLng       = "lng"
	ParamFavorites = "favs"
)

// ParseGeoPoint returns the point encoded by the lat and lng parameters.
// A missing or non-numeric value yields ok == false; that is the normal
// "no location selected" state, not an error.
func ParseGeoPoint(query url.Values) (model.GeoPoint, bool) {
	lat, ok := parseCoordinate(query.Get(ParamLat))
	if !ok {
		return model.GeoPoint{}, false
	}
	lng, ok := parseCoordinate(query.Get(ParamLng))
	if !ok {
		return model.GeoPoint{}, false
	}
	return model.GeoPoint{Lat: lat, Lng: lng}, true
}

func parseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsFavoritesRequested reports whether the query asks for the favorites view.
func IsFavoritesRequested(query url.Values) bool {
	return query.Has(ParamFavorites)
}

// EncodeGeoPoint writes p into a fresh query suitable for Router.Replace.
func EncodeGeoPoint(p model.GeoPoint) url.Values {
	q := url.Values{}
	q.Set(ParamLat, strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set(ParamLng, strconv.FormatFloat(p.Lng, 'f', -1, 64))
	return q
}

// Resolver memoizes ParseGeoPoint so that unchanged routing state keeps
// returning the same *GeoPoint. Callers may compare results by pointer to
// skip redundant work.
type Resolver struct {
	primed bool
	rawLat string
	rawLng string
	point  *model.GeoPoint
}

// Resolve returns the current point or nil when the query holds no valid location.
func (r *Resolver) Resolve(query url.Values) *model.GeoPoint {
	rawLat, rawLng := query.Get(ParamLat), query.Get(ParamLng)
	if r.primed && rawLat == r.rawLat && rawLng == r.rawLng {
		return r.point
	}
	r.primed = true
	r.rawLat, r.rawLng = rawLat, rawLng

	p, ok := ParseGeoPoint(query)
	switch {
	case !ok:
		r.point = nil
	case r.point != nil && *r.point == p:
		// "35.6" and "35.60" resolve to the same value; keep the old identity.
	default:
		r.point = &p
	}
	return r.point
}
