package search

import (
	"context"
	"image"

	lru "github.com/hashicorp/golang-lru/v2"

	"wander/internal/model"
)

// CachedProvider serves repeated (identity, cursor) page requests from an LRU.
// Refresh requests skip the lookup and replace the stored page, so an
// explicit search always gets a fresh cursor chain. Failures are never
// cached.
type CachedProvider struct {
	next  Provider
	pages *lru.Cache[string, model.ResultPage]
}

func NewCachedProvider(next Provider, size int) (*CachedProvider, error) {
	if size <= 0 {
		size = 128
	}
	pages, err := lru.New[string, model.ResultPage](size)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{next: next, pages: pages}, nil
}

func pageKey(req model.PageRequest) string {
	return req.Query.Identity() + "#" + req.Cursor
}

func (c *CachedProvider) Nearby(ctx context.Context, req model.PageRequest) (model.ResultPage, error) {
	key := pageKey(req)
	if !req.Refresh {
		if page, ok := c.pages.Get(key); ok {
			return page, nil
		}
	}

	page, err := c.next.Nearby(ctx, req)
	if err != nil {
		return model.ResultPage{}, err
	}
	c.pages.Add(key, page)
	return page, nil
}

// Photo forwards to the wrapped provider when it supports photos.
func (c *CachedProvider) Photo(ctx context.Context, ref string, maxWidth, maxHeight uint) (image.Image, error) {
	pp, ok := c.next.(PhotoProvider)
	if !ok {
		return nil, ErrNoProvider
	}
	return pp.Photo(ctx, ref, maxWidth, maxHeight)
}

// Purge drops every cached page.
func (c *CachedProvider) Purge() {
	c.pages.Purge()
}

func (c *CachedProvider) Len() int {
	return c.pages.Len()
}
