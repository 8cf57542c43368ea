package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"wander/internal/model"
	"wander/internal/search"
)

// UIPreferences stores persisted search panel choices.
type UIPreferences struct {
	Sort   model.SortOption `json:"sort"`
	Radius int              `json:"radius"`
	Type   model.SearchType `json:"type"`
}

// SearchDefaults are the fallbacks used when no preference was saved.
type SearchDefaults struct {
	Radius int
	Type   model.SearchType
}

func (p UIPreferences) withDefaults(d SearchDefaults) UIPreferences {
	p.Sort = search.ParseSortOption(string(p.Sort))
	if p.Radius <= 0 {
		p.Radius = d.Radius
	}
	if p.Radius <= 0 {
		p.Radius = 1500
	}
	if p.Type == "" {
		p.Type = d.Type
	}
	if p.Type == "" {
		p.Type = model.TypeTouristAttraction
	}
	return p
}

// PrefsPath returns the preferences file inside configDir, or under
// ~/.wander when configDir is empty. It returns "" when neither is known,
// which disables persistence.
func PrefsPath(configDir string) string {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".wander")
	}
	return filepath.Join(configDir, "ui_prefs.json")
}

func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return UIPreferences{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return UIPreferences{}
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return UIPreferences{}
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
