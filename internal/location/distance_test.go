package location

import (
	"math"
	"testing"

	"wander/internal/model"
)

func TestHaversine(t *testing.T) {
	oneDegree := Haversine(model.GeoPoint{Lat: 0, Lng: 0}, model.GeoPoint{Lat: 1, Lng: 0})
	if got := RoundKm(oneDegree); got != 111.2 {
		t.Errorf("one degree of latitude = %.1f km, want 111.2", got)
	}

	london := model.GeoPoint{Lat: 51.5074, Lng: -0.1278}
	paris := model.GeoPoint{Lat: 48.8566, Lng: 2.3522}
	d := Haversine(london, paris)
	if d < 340 || d > 347 {
		t.Errorf("london-paris = %.1f km, want about 343", d)
	}

	if Haversine(paris, paris) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestAnnotate(t *testing.T) {
	center := model.GeoPoint{Lat: 0, Lng: 0}
	places := []model.Place{
		{ID: "a", Location: model.GeoPoint{Lat: 1, Lng: 0}},
		{ID: "bad", Location: model.GeoPoint{Lat: math.NaN(), Lng: 0}},
		{ID: "c", Location: model.GeoPoint{Lat: 0, Lng: 0}},
	}

	got := Annotate(places, &center)
	if len(got) != len(places) {
		t.Fatalf("len = %d, want %d", len(got), len(places))
	}
	if got[0].DistanceKm == nil || *got[0].DistanceKm != 111.2 {
		t.Errorf("a distance = %v, want 111.2", got[0].DistanceKm)
	}
	if got[1].DistanceKm != nil {
		t.Errorf("malformed place got distance %v", *got[1].DistanceKm)
	}
	if got[2].DistanceKm == nil || *got[2].DistanceKm != 0 {
		t.Errorf("c distance = %v, want 0", got[2].DistanceKm)
	}
	if places[0].DistanceKm != nil {
		t.Error("input slice was mutated")
	}
}

func TestAnnotateWithoutReference(t *testing.T) {
	d := 3.0
	places := []model.Place{{ID: "a", Location: model.GeoPoint{Lat: 1, Lng: 1}, DistanceKm: &d}}

	for _, got := range Annotate(places, nil) {
		if got.HasDistance() {
			t.Errorf("%s kept a distance without a reference", got.ID)
		}
	}
}
