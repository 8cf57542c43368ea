package search

import (
	"context"
	"fmt"
	"image"

	"googlemaps.github.io/maps"

	"wander/internal/model"
)

// GoogleProvider runs Places Nearby Search. The provider's next_page_token is
// passed through untouched as the page cursor.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider for apiKey. Extra options are applied
// after the key.
func NewGoogleProvider(apiKey string, opts ...maps.ClientOption) (*GoogleProvider, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleProvider{
		client: client,
	}, nil
}

func (g *GoogleProvider) Nearby(ctx context.Context, req model.PageRequest) (model.ResultPage, error) {
	q := req.Query
	r := &maps.NearbySearchRequest{
		Location: &maps.LatLng{
			Lat: q.Center.Lat,
			Lng: q.Center.Lng,
		},
		Radius:    uint(q.Radius),
		Keyword:   q.Keyword,
		PageToken: req.Cursor,
	}
	if q.Type != "" {
		r.Type = maps.PlaceType(q.Type)
	}

	resp, err := g.client.NearbySearch(ctx, r)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("nearby search request failed: %w", err)
	}

	places := make([]model.Place, 0, len(resp.Results))
	for _, result := range resp.Results {
		place := model.Place{
			ID:   result.PlaceID,
			Name: result.Name,
			Location: model.GeoPoint{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
			Rating:      float64(result.Rating),
			RatingCount: result.UserRatingsTotal,
			Vicinity:    result.Vicinity,
		}
		if len(result.Photos) > 0 {
			place.PhotoRef = result.Photos[0].PhotoReference
		}
		places = append(places, place)
	}

	return model.ResultPage{Items: places, NextCursor: resp.NextPageToken}, nil
}

// Photo downloads a place photo by reference.
func (g *GoogleProvider) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (image.Image, error) {
	resp, err := g.client.PlacePhoto(ctx, &maps.PlacePhotoRequest{
		PhotoReference: ref,
		MaxWidth:       maxWidth,
		MaxHeight:      maxHeight,
	})
	if err != nil {
		return nil, fmt.Errorf("place photo request failed: %w", err)
	}
	defer resp.Data.Close()

	img, err := resp.Image()
	if err != nil {
		return nil, fmt.Errorf("decode place photo: %w", err)
	}
	return img, nil
}
