package db

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/sync/singleflight"

	"wander/internal/logger"
	"wander/internal/model"
)

// FavoritesSource is the favorites collaborator backed by SQLite. Concurrent
// loads share one query.
type FavoritesSource struct {
	db    *sql.DB
	log   *logger.Logger
	group singleflight.Group
}

func NewFavoritesSource(db *sql.DB, log *logger.Logger) *FavoritesSource {
	if log == nil {
		log = logger.Discard()
	}
	return &FavoritesSource{db: db, log: log.WithComponent("favorites")}
}

// Load returns every saved place, newest first.
func (s *FavoritesSource) Load(ctx context.Context) ([]model.Place, error) {
	v, err, shared := s.group.Do("favorites", func() (interface{}, error) {
		favs, err := ListFavorites(ctx, s.db)
		if err != nil {
			return nil, err
		}
		places := make([]model.Place, len(favs))
		for i, f := range favs {
			places[i] = f.Place
		}
		return places, nil
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to load favorites")
		return nil, err
	}
	if shared {
		s.log.Debug("favorites load shared with a concurrent caller")
	}
	return append([]model.Place(nil), v.([]model.Place)...), nil
}

// Toggle saves p when it is not a favorite and removes it otherwise. The
// removed favorite is returned so the caller can restore it.
func (s *FavoritesSource) Toggle(ctx context.Context, p model.Place) (added bool, removed *model.Favorite, err error) {
	fav, err := GetFavorite(ctx, s.db, p.ID)
	switch {
	case errors.Is(err, ErrNotFavorite):
		if err := InsertFavorite(ctx, s.db, p); err != nil {
			return false, nil, err
		}
		return true, nil, nil
	case err != nil:
		return false, nil, err
	}

	if err := DeleteFavorite(ctx, s.db, p.ID); err != nil {
		return false, nil, err
	}
	return false, &fav, nil
}

// Restore puts a removed favorite back with its original timestamp.
func (s *FavoritesSource) Restore(ctx context.Context, fav model.Favorite) error {
	return InsertFavoriteAt(ctx, s.db, fav)
}

// Remove deletes a favorite by id.
func (s *FavoritesSource) Remove(ctx context.Context, placeID string) error {
	return DeleteFavorite(ctx, s.db, placeID)
}

func (s *FavoritesSource) IsFavorite(ctx context.Context, placeID string) (bool, error) {
	return IsFavorite(ctx, s.db, placeID)
}
