package search

import (
	"sort"

	"wander/internal/location"
	"wander/internal/model"
)

// Sort returns a reordered copy of places. The input is never mutated.
//
// Relevance keeps arrival order. Distance is ascending with unset distances
// last. Rating is descending, then by rating count, then arrival order.
func Sort(places []model.Place, by model.SortOption) []model.Place {
	out := append([]model.Place(nil), places...)

	switch by {
	case model.SortDistance:
		sort.SliceStable(out, func(i, j int) bool {
			left, right := out[i].DistanceKm, out[j].DistanceKm
			if left == nil {
				return false
			}
			if right == nil {
				return true
			}
			return *left < *right
		})
	case model.SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Rating != out[j].Rating {
				return out[i].Rating > out[j].Rating
			}
			return out[i].RatingCount > out[j].RatingCount
		})
	}

	return out
}

// Present annotates places with their distance from center and sorts them.
func Present(places []model.Place, center *model.GeoPoint, by model.SortOption) []model.Place {
	return Sort(location.Annotate(places, center), by)
}

// ParseSortOption maps a persisted key back to a sort option.
func ParseSortOption(s string) model.SortOption {
	for _, opt := range model.SortOptions {
		if string(opt) == s {
			return opt
		}
	}
	return model.SortRelevance
}

// NextSortOption cycles relevance → distance → rating → relevance.
func NextSortOption(current model.SortOption) model.SortOption {
	for i, opt := range model.SortOptions {
		if opt == current {
			return model.SortOptions[(i+1)%len(model.SortOptions)]
		}
	}
	return model.SortRelevance
}
