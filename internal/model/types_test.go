package model

import "testing"

func TestSearchQueryIdentity(t *testing.T) {
	base := SearchQuery{Center: GeoPoint{Lat: 35.681231, Lng: 139.767125}, Radius: 1500, Type: TypeCafe}

	tests := []struct {
		name string
		q    SearchQuery
		same bool
	}{
		{"identical", base, true},
		{"sixth decimal", SearchQuery{Center: GeoPoint{Lat: 35.681234, Lng: 139.767125}, Radius: 1500, Type: TypeCafe}, false},
		{"radius", SearchQuery{Center: base.Center, Radius: 1501, Type: TypeCafe}, false},
		{"keyword", SearchQuery{Center: base.Center, Radius: 1500, Keyword: "tea", Type: TypeCafe}, false},
		{"type", SearchQuery{Center: base.Center, Radius: 1500, Type: TypeMuseum}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.Identity() == base.Identity(); got != tt.same {
				t.Errorf("%q vs %q: same = %v, want %v", tt.q.Identity(), base.Identity(), got, tt.same)
			}
		})
	}
}
