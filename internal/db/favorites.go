package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"wander/internal/model"
)

// ErrNotFavorite is returned when removing a place that is not saved.
var ErrNotFavorite = errors.New("place is not a favorite")

// timestampLayout matches the schema default so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const favoriteColumns = `
	place_id,
	name,
	latitude,
	longitude,
	COALESCE(rating, 0),
	COALESCE(rating_count, 0),
	COALESCE(photo_ref, ''),
	COALESCE(vicinity, ''),
	created_at
`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFavorite(row scanner) (model.Favorite, error) {
	var fav model.Favorite
	var lat, lng sql.NullFloat64
	var createdAt string
	if err := row.Scan(
		&fav.Place.ID,
		&fav.Place.Name,
		&lat,
		&lng,
		&fav.Place.Rating,
		&fav.Place.RatingCount,
		&fav.Place.PhotoRef,
		&fav.Place.Vicinity,
		&createdAt,
	); err != nil {
		return fav, err
	}
	// A favorite without coordinates keeps an invalid location so distance
	// annotation leaves it unset.
	fav.Place.Location = model.GeoPoint{Lat: math.NaN(), Lng: math.NaN()}
	if lat.Valid && lng.Valid {
		fav.Place.Location = model.GeoPoint{Lat: lat.Float64, Lng: lng.Float64}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		fav.CreatedAt = t
	}
	return fav, nil
}

// ListFavorites returns saved places, newest first.
func ListFavorites(ctx context.Context, db *sql.DB) ([]model.Favorite, error) {
	rows, err := db.QueryContext(ctx, "SELECT "+favoriteColumns+" FROM favorites ORDER BY created_at DESC, place_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Favorite
	for rows.Next() {
		fav, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, fav)
	}

	return results, rows.Err()
}

// IsFavorite reports whether a place is saved.
func IsFavorite(ctx context.Context, db *sql.DB, placeID string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM favorites WHERE place_id = ?", placeID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// InsertFavorite saves a place. Saving an already saved place is a no-op.
func InsertFavorite(ctx context.Context, db *sql.DB, p model.Place) error {
	return InsertFavoriteAt(ctx, db, model.Favorite{Place: p})
}

// InsertFavoriteAt saves a place with an explicit creation time, used when
// restoring a removed favorite in its old position.
func InsertFavoriteAt(ctx context.Context, db *sql.DB, fav model.Favorite) error {
	p := fav.Place
	var lat, lng, photo, vicinity interface{}
	if p.Location.Valid() {
		lat, lng = p.Location.Lat, p.Location.Lng
	}
	if p.PhotoRef != "" {
		photo = p.PhotoRef
	}
	if p.Vicinity != "" {
		vicinity = p.Vicinity
	}
	createdAt := time.Now().UTC().Format(timestampLayout)
	if !fav.CreatedAt.IsZero() {
		createdAt = fav.CreatedAt.UTC().Format(timestampLayout)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO favorites (place_id, name, latitude, longitude, rating, rating_count, photo_ref, vicinity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(place_id) DO NOTHING
	`, p.ID, p.Name, lat, lng, p.Rating, p.RatingCount, photo, vicinity, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	return nil
}

// GetFavorite returns one saved place.
func GetFavorite(ctx context.Context, db *sql.DB, placeID string) (model.Favorite, error) {
	row := db.QueryRowContext(ctx, "SELECT "+favoriteColumns+" FROM favorites WHERE place_id = ?", placeID)
	fav, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fav, ErrNotFavorite
	}
	return fav, err
}

// DeleteFavorite removes a saved place.
func DeleteFavorite(ctx context.Context, db *sql.DB, placeID string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM favorites WHERE place_id = ?", placeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFavorite
	}
	return nil
}
