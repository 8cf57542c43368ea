package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// PageResultMsg is sent when a page request completes, successfully or not.
type PageResultMsg struct {
	Request PageRequest
	Page    ResultPage
	Err     error
}

// PositionMsg is sent when the device position lookup resolves.
type PositionMsg struct {
	Point GeoPoint
	// Recenter asks for the position to be committed to the URL.
	Recenter bool
}

// FavoritesLoadedMsg is sent when the favorites source has been read.
type FavoritesLoadedMsg struct {
	Places []Place
}

// FavoriteToggledMsg is sent after a place was added to or removed from favorites.
type FavoriteToggledMsg struct {
	Place Place
	Added bool
	// Removed is the deleted record when Added is false.
	Removed *Favorite
}

// SearchTimerMsg fires when the search button busy timer expires.
type SearchTimerMsg struct {
	ID int
}

// PhotoLoadedMsg carries a rendered photo preview for a place.
type PhotoLoadedMsg struct {
	PlaceID string
	Art     string
}

// Button is the pointer button of a click.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// PointerEvent is a document-level click as seen by global observers.
type PointerEvent struct {
	Seq    uint64
	Button Button
	Region Region
	// At is the map coordinate under the pointer, when the click hit the map.
	At *GeoPoint
	// PlaceID is set when the click hit a card or a map pin.
	PlaceID string
}
