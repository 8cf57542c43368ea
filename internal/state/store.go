package state

import "wander/internal/model"

// Store is the full set of shared channels. The writer lists here are the
// complete ownership map; nothing else may write these values.
type Store struct {
	// SelectedPlace is the place whose card is highlighted.
	SelectedPlace *Slot[string]
	// ClickedPlace is the place whose pin was clicked on the map.
	ClickedPlace *Slot[string]
	// Overlay is the pending "set center here" location.
	Overlay *Slot[*model.GeoPoint]
	// Favorites is non-empty only in favorites view.
	Favorites *Slot[[]model.Place]

	ShowSearchOptions *Slot[bool]
	ShowResults       *Slot[bool]
	SearchBusy        *Slot[bool]
	CurrentPosition   *Slot[*model.GeoPoint]
}

func NewStore() *Store {
	return &Store{
		SelectedPlace: NewSlot[string]("selected-place", "",
			WriterDismissRule, WriterMapView, WriterListView),
		ClickedPlace: NewSlot[string]("clicked-place", "",
			WriterMountRule, WriterURLRule, WriterMapView, WriterListView),
		Overlay: NewSlot[*model.GeoPoint]("overlay", nil,
			WriterOverlay),
		Favorites: NewSlot[[]model.Place]("favorites", nil,
			WriterMountRule, WriterURLRule, WriterViewModeRule),
		ShowSearchOptions: NewSlot("show-search-options", false,
			WriterMountRule, WriterURLRule, WriterSearchPanel),
		ShowResults: NewSlot("show-results", false,
			WriterMountRule, WriterURLRule, WriterViewModeRule, WriterListView),
		SearchBusy: NewSlot("search-busy", false,
			WriterDismissRule, WriterSearchPanel),
		CurrentPosition: NewSlot[*model.GeoPoint]("current-position", nil,
			WriterMountRule),
	}
}
