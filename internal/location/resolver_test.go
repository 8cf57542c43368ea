package location

import (
	"net/url"
	"testing"

	"wander/internal/model"
)

func TestParseGeoPoint(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  model.GeoPoint
		ok    bool
	}{
		{"missing both", "", model.GeoPoint{}, false},
		{"missing lng", "lat=35.68", model.GeoPoint{}, false},
		{"missing lat", "lng=139.65", model.GeoPoint{}, false},
		{"empty values", "lat=&lng=", model.GeoPoint{}, false},
		{"non numeric", "lat=abc&lng=139.65", model.GeoPoint{}, false},
		{"nan", "lat=NaN&lng=1", model.GeoPoint{}, false},
		{"infinite", "lat=Inf&lng=1", model.GeoPoint{}, false},
		{"overflow", "lat=1e400&lng=1", model.GeoPoint{}, false},
		{"valid", "lat=35.68&lng=139.65", model.GeoPoint{Lat: 35.68, Lng: 139.65}, true},
		{"negative", "lat=-33.86&lng=-151.2", model.GeoPoint{Lat: -33.86, Lng: -151.2}, true},
		{"zero is a location", "lat=0&lng=0", model.GeoPoint{}, true},
		{"padded", "lat=%2012.5%20&lng=3", model.GeoPoint{Lat: 12.5, Lng: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			got, ok := ParseGeoPoint(q)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("point = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolverKeepsIdentityForUnchangedInput(t *testing.T) {
	var r Resolver

	q := url.Values{"lat": {"35.68"}, "lng": {"139.65"}}
	first := r.Resolve(q)
	if first == nil {
		t.Fatal("expected a point")
	}

	second := r.Resolve(url.Values{"lat": {"35.68"}, "lng": {"139.65"}, "favs": {""}})
	if second != first {
		t.Error("unchanged lat/lng produced a new pointer")
	}

	third := r.Resolve(url.Values{"lat": {"35.680"}, "lng": {"139.65"}})
	if third != first {
		t.Error("equal value with different spelling produced a new pointer")
	}

	moved := r.Resolve(url.Values{"lat": {"35.7"}, "lng": {"139.65"}})
	if moved == first || moved == nil || moved.Lat != 35.7 {
		t.Errorf("moved point = %+v, want a new pointer at 35.7", moved)
	}

	if got := r.Resolve(url.Values{}); got != nil {
		t.Errorf("empty query resolved to %+v", got)
	}
}

func TestIsFavoritesRequested(t *testing.T) {
	if IsFavoritesRequested(url.Values{"lat": {"1"}}) {
		t.Error("favs absent but reported present")
	}
	if !IsFavoritesRequested(url.Values{"favs": {""}}) {
		t.Error("favs present as flag but not detected")
	}
}

func TestEncodeGeoPointRoundTrip(t *testing.T) {
	p := model.GeoPoint{Lat: 35.6762, Lng: 139.6503}
	got, ok := ParseGeoPoint(EncodeGeoPoint(p))
	if !ok || got != p {
		t.Errorf("round trip = %+v (%v), want %+v", got, ok, p)
	}
}
