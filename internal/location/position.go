package location

import (
	"context"
	"fmt"
	"strings"

	"wander/internal/model"
)

// FixedPosition reports a configured device position.
type FixedPosition struct {
	Point model.GeoPoint
}

func (f FixedPosition) CurrentPosition(ctx context.Context) (model.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return model.GeoPoint{}, err
	}
	return f.Point, nil
}

// NoPosition never resolves. The lookup ends only when ctx is cancelled,
// the same as a user who never answers a permission prompt.
type NoPosition struct{}

func (NoPosition) CurrentPosition(ctx context.Context) (model.GeoPoint, error) {
	<-ctx.Done()
	return model.GeoPoint{}, ctx.Err()
}

// ParsePosition parses "lat,lng".
func ParsePosition(s string) (model.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model.GeoPoint{}, fmt.Errorf("position %q: want lat,lng", s)
	}
	lat, okLat := parseCoordinate(parts[0])
	lng, okLng := parseCoordinate(parts[1])
	if !okLat || !okLng {
		return model.GeoPoint{}, fmt.Errorf("position %q: coordinates must be finite numbers", s)
	}
	return model.GeoPoint{Lat: lat, Lng: lng}, nil
}
