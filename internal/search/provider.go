package search

import (
	"context"
	"errors"
	"image"

	"wander/internal/model"
)

// ErrNoProvider is returned when no places backend is configured.
var ErrNoProvider = errors.New("no places provider configured")

// Provider fetches one page of nearby places. It knows nothing about
// accumulation or identity; the Fetcher owns that.
type Provider interface {
	Nearby(ctx context.Context, req model.PageRequest) (model.ResultPage, error)
}

// PhotoProvider is implemented by providers that can return place photos.
type PhotoProvider interface {
	Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (image.Image, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req model.PageRequest) (model.ResultPage, error)

func (f ProviderFunc) Nearby(ctx context.Context, req model.PageRequest) (model.ResultPage, error) {
	return f(ctx, req)
}

type noProvider struct{}

func (noProvider) Nearby(context.Context, model.PageRequest) (model.ResultPage, error) {
	return model.ResultPage{}, ErrNoProvider
}

// Unavailable returns a provider that fails every request with ErrNoProvider.
func Unavailable() Provider {
	return noProvider{}
}
