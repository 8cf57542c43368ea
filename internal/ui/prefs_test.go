package ui

import (
	"os"
	"path/filepath"
	"testing"

	"wander/internal/model"
)

func TestUIPreferencesPersist(t *testing.T) {
	path := PrefsPath(t.TempDir())

	want := UIPreferences{Sort: model.SortRating, Radius: 800, Type: model.TypeCafe}
	if err := saveUIPreferences(path, want); err != nil {
		t.Fatal(err)
	}
	if got := loadUIPreferences(path); got != want {
		t.Fatalf("loaded %+v, want %+v", got, want)
	}
}

func TestUIPreferencesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ui_prefs.json")
	if err := os.WriteFile(path, []byte(`{"sort":"alphabetical"}`), 0644); err != nil {
		t.Fatal(err)
	}

	got := loadUIPreferences(path).withDefaults(SearchDefaults{Radius: 2000})
	want := UIPreferences{Sort: model.SortRelevance, Radius: 2000, Type: model.TypeTouristAttraction}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if got := loadUIPreferences(""); got != (UIPreferences{}) {
		t.Fatalf("empty path loaded %+v", got)
	}
	if err := saveUIPreferences("", want); err != nil {
		t.Fatalf("empty path save: %v", err)
	}
}
