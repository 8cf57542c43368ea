package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"googlemaps.github.io/maps"

	"wander/internal/model"
)

func newGoogleTestServer(t *testing.T, body string, got *url.Values) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maps/api/place/nearbysearch/json" {
			http.NotFound(w, r)
			return
		}
		*got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	g, err := NewGoogleProvider("secret", maps.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGoogleNearby(t *testing.T) {
	tests := []struct {
		name       string
		cursor     string
		wantToken  string
		wantNext   string
		wantPhoto  string
		wantRating int
	}{
		{"first page", "", "", "tok-2", "ph-1", 5210},
		{"cursor passed through", "tok-2", "tok-2", "", "ph-1", 5210},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := ""
			if tt.cursor == "" {
				next = `"next_page_token": "tok-2",`
			}
			body := `{
				"status": "OK",` + next + `
				"results": [
					{"place_id": "p1", "name": "Senso-ji", "vicinity": "2-3-1 Asakusa",
					 "rating": 4.5, "user_ratings_total": 5210,
					 "geometry": {"location": {"lat": 35.7148, "lng": 139.7967}},
					 "photos": [{"photo_reference": "ph-1"}, {"photo_reference": "ph-2"}]},
					{"place_id": "p2", "name": "Kaminarimon",
					 "geometry": {"location": {"lat": 35.7111, "lng": 139.7963}}}
				]
			}`
			var got url.Values
			g := newGoogleTestServer(t, body, &got)

			q := tokyo()
			q.Keyword = "temple"
			pg, err := g.Nearby(context.Background(), model.PageRequest{ID: "r", Query: q, Cursor: tt.cursor})
			if err != nil {
				t.Fatal(err)
			}

			if got.Get("pagetoken") != tt.wantToken {
				t.Errorf("pagetoken = %q, want %q", got.Get("pagetoken"), tt.wantToken)
			}
			if got.Get("key") != "secret" || got.Get("keyword") != "temple" || got.Get("type") != "tourist_attraction" {
				t.Errorf("query = %v", got)
			}
			if got.Get("radius") != "1500" {
				t.Errorf("radius = %q", got.Get("radius"))
			}
			if pg.NextCursor != tt.wantNext {
				t.Errorf("next cursor = %q, want %q", pg.NextCursor, tt.wantNext)
			}

			if len(pg.Items) != 2 {
				t.Fatalf("items = %d, want 2", len(pg.Items))
			}
			first := pg.Items[0]
			if first.ID != "p1" || first.PhotoRef != tt.wantPhoto || first.RatingCount != tt.wantRating {
				t.Errorf("first = %+v", first)
			}
			if first.Rating != 4.5 || first.Location.Lat != 35.7148 || first.Vicinity != "2-3-1 Asakusa" {
				t.Errorf("first = %+v", first)
			}
			if pg.Items[1].PhotoRef != "" || pg.Items[1].RatingCount != 0 {
				t.Errorf("second = %+v", pg.Items[1])
			}
		})
	}
}

func TestGoogleNearbyStatusError(t *testing.T) {
	var got url.Values
	g := newGoogleTestServer(t, `{"status": "REQUEST_DENIED", "error_message": "bad key", "results": []}`, &got)

	_, err := g.Nearby(context.Background(), model.PageRequest{ID: "r", Query: tokyo()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "REQUEST_DENIED") || !strings.Contains(err.Error(), "nearby search request failed") {
		t.Errorf("err = %v", err)
	}
}

func TestGoogleNearbyZeroResults(t *testing.T) {
	var got url.Values
	g := newGoogleTestServer(t, `{"status": "ZERO_RESULTS", "results": []}`, &got)

	pg, err := g.Nearby(context.Background(), model.PageRequest{ID: "r", Query: tokyo()})
	if err != nil {
		t.Fatal(err)
	}
	if len(pg.Items) != 0 || pg.NextCursor != "" {
		t.Errorf("page = %+v, want empty", pg)
	}
}
