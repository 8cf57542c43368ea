package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olivere/elastic/v7"

	"wander/internal/logger"
	"wander/internal/model"
)

// newElasticTestProvider serves total matching documents from an in-memory
// index, honoring the from/size window of each search body.
func newElasticTestProvider(t *testing.T, total int, gotFrom *int) *ElasticProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/places/_search" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			From int `json:"from"`
			Size int `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		*gotFrom = body.From

		var hits []string
		for i := body.From; i < total && i < body.From+body.Size; i++ {
			src := fmt.Sprintf(`{"name": "place %d", "rating": 4.1, "rating_count": %d, "location": {"lat": 35.68, "lon": 139.65}}`, i, i)
			if i%2 == 0 {
				src = fmt.Sprintf(`{"id": "doc-%d", "name": "place %d", "photo": "ph-%d", "location": {"lat": 35.68, "lon": 139.65}}`, i, i, i)
			}
			hits = append(hits, fmt.Sprintf(`{"_index": "places", "_id": "hit-%d", "_source": %s}`, i, src))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"took": 1, "hits": {"total": {"value": %d, "relation": "eq"}, "hits": [%s]}}`,
			total, strings.Join(hits, ","))
	}))
	t.Cleanup(srv.Close)

	es, err := NewElasticProvider(srv.URL, "places", logger.Discard(), elastic.SetHealthcheck(false))
	if err != nil {
		t.Fatal(err)
	}
	return es
}

func TestElasticNearbyPages(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		cursor    string
		wantFrom  int
		wantItems int
		wantNext  string
	}{
		{"first page", 45, "", 0, 20, "20"},
		{"middle page", 45, "20", 20, 20, "40"},
		{"last page", 45, "40", 40, 5, ""},
		{"exact multiple", 40, "20", 20, 20, ""},
		{"no matches", 0, "", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFrom := -1
			es := newElasticTestProvider(t, tt.total, &gotFrom)

			pg, err := es.Nearby(context.Background(), model.PageRequest{ID: "r", Query: tokyo(), Cursor: tt.cursor})
			if err != nil {
				t.Fatal(err)
			}
			if gotFrom != tt.wantFrom {
				t.Errorf("from = %d, want %d", gotFrom, tt.wantFrom)
			}
			if len(pg.Items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(pg.Items), tt.wantItems)
			}
			if pg.NextCursor != tt.wantNext {
				t.Errorf("next cursor = %q, want %q", pg.NextCursor, tt.wantNext)
			}
		})
	}
}

func TestElasticNearbyDocumentMapping(t *testing.T) {
	gotFrom := -1
	es := newElasticTestProvider(t, 2, &gotFrom)

	pg, err := es.Nearby(context.Background(), model.PageRequest{ID: "r", Query: tokyo()})
	if err != nil {
		t.Fatal(err)
	}
	if len(pg.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(pg.Items))
	}
	if got := pg.Items[0]; got.ID != "doc-0" || got.PhotoRef != "ph-0" || got.Location.Lng != 139.65 {
		t.Errorf("first = %+v", got)
	}
	if got := pg.Items[1]; got.ID != "hit-1" || got.RatingCount != 1 || got.Rating != 4.1 {
		t.Errorf("second = %+v, want id from hit", got)
	}
}

func TestElasticNearbyInvalidCursor(t *testing.T) {
	for _, cursor := range []string{"abc", "-20"} {
		gotFrom := -1
		es := newElasticTestProvider(t, 45, &gotFrom)

		if _, err := es.Nearby(context.Background(), model.PageRequest{ID: "r", Query: tokyo(), Cursor: cursor}); err == nil {
			t.Errorf("cursor %q: expected error", cursor)
		}
		if gotFrom != -1 {
			t.Errorf("cursor %q: request sent with from %d", cursor, gotFrom)
		}
	}
}
