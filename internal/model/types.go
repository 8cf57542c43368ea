package model

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// GeoPoint is a validated latitude/longitude pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Valid reports whether both coordinates are finite numbers.
func (p GeoPoint) Valid() bool {
	return isFinite(p.Lat) && isFinite(p.Lng)
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SearchType is the provider place category used to narrow a nearby search.
type SearchType string

const (
	TypeTouristAttraction SearchType = "tourist_attraction"
	TypeRestaurant        SearchType = "restaurant"
	TypeCafe              SearchType = "cafe"
	TypeBar               SearchType = "bar"
	TypeMuseum            SearchType = "museum"
	TypePark              SearchType = "park"
	TypeLodging           SearchType = "lodging"
)

// SearchTypes lists the selectable types in display order.
var SearchTypes = []SearchType{
	TypeTouristAttraction,
	TypeRestaurant,
	TypeCafe,
	TypeBar,
	TypeMuseum,
	TypePark,
	TypeLodging,
}

// SearchQuery is the identity of a nearby search. Any field change is a new identity.
type SearchQuery struct {
	Center  GeoPoint
	Radius  int // meters
	Keyword string
	Type    SearchType
}

// Identity returns a stable key for caching and response matching. The
// center is written at full precision: points that print the same at five
// decimals are still different searches.
func (q SearchQuery) Identity() string {
	return fmt.Sprintf("%s,%s|%d|%s|%s",
		strconv.FormatFloat(q.Center.Lat, 'g', -1, 64),
		strconv.FormatFloat(q.Center.Lng, 'g', -1, 64),
		q.Radius, q.Keyword, q.Type)
}

// Place is a single point of interest returned by a provider.
type Place struct {
	ID          string
	Name        string
	Location    GeoPoint
	Rating      float64
	RatingCount int
	PhotoRef    string // empty when the provider has no photo
	Vicinity    string

	// DistanceKm is derived for presentation and never persisted.
	DistanceKm *float64
}

// HasDistance reports whether the distance annotator set a distance.
func (p Place) HasDistance() bool {
	return p.DistanceKm != nil
}

// ResultPage is one provider response. An empty NextCursor is terminal.
type ResultPage struct {
	Items      []Place
	NextCursor string
}

// PageRequest is what the fetcher hands to a provider.
type PageRequest struct {
	ID     string // unique per issued request
	Query  SearchQuery
	Cursor string // empty for the first page
	// Refresh marks an explicitly requested first page that must come from
	// the provider, not from a cache.
	Refresh bool
}

// FirstPage reports whether the request asks for the first page.
func (r PageRequest) FirstPage() bool {
	return r.Cursor == ""
}

// Favorite is a saved place as stored by the favorites source.
type Favorite struct {
	Place     Place
	CreatedAt time.Time
}

// ViewMode selects what the results panel shows.
type ViewMode int

const (
	ViewSearch ViewMode = iota
	ViewFavorites
)

func (v ViewMode) String() string {
	if v == ViewFavorites {
		return "favorites"
	}
	return "search"
}

// SortOption orders presented results.
type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortDistance  SortOption = "distance"
	SortRating    SortOption = "rating"
)

// SortOptions lists sort keys in cycle order.
var SortOptions = []SortOption{SortRelevance, SortDistance, SortRating}

// Region identifies the UI surface a pointer event originated from.
type Region int

const (
	RegionNone Region = iota
	RegionMap
	RegionMapPin
	RegionCard
	RegionImage
	RegionOverlayConfirm
	RegionSearchButton
	RegionPanel
)

func (r Region) String() string {
	switch r {
	case RegionMap:
		return "map"
	case RegionMapPin:
		return "map-pin"
	case RegionCard:
		return "card"
	case RegionImage:
		return "image"
	case RegionOverlayConfirm:
		return "overlay-confirm"
	case RegionSearchButton:
		return "search-button"
	case RegionPanel:
		return "panel"
	default:
		return "none"
	}
}

// Screen represents different app screens.
type Screen int

const (
	ScreenExplore Screen = iota
	ScreenPlaceDetail
	ScreenSearchOptions
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
