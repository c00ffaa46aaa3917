package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage"
)

var placeColumns = []string{"id", "name", "country", "city", "priority", "note", "visited", "image", "user_id"}

func selectPlaces() squirrel.SelectBuilder {
	return squirrel.Select(placeColumns...).From("places").OrderBy("id")
}

// CreatePlace persists a new place. The owning user must exist.
func (s *SQLiteStore) CreatePlace(ctx context.Context, place *models.Place) error {
	var image any
	if place.Image != nil {
		image = *place.Image
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO places (name, country, city, priority, note, visited, image, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		place.Name, place.Country, place.City, place.Priority, place.Note, place.Visited, image, place.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert place: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read place id: %w", err)
	}
	place.ID = id

	return nil
}

// GetPlace retrieves a place by ID. A missing place yields nil, nil.
func (s *SQLiteStore) GetPlace(ctx context.Context, id int64) (*models.Place, error) {
	q, args, err := selectPlaces().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build place query: %w", err)
	}

	place, err := scanPlace(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}

	return place, nil
}

// ListPlaces returns the user's places matching every dimension set on filter.
func (s *SQLiteStore) ListPlaces(ctx context.Context, userID int64, filter models.PlaceFilter) ([]*models.Place, error) {
	where := squirrel.Eq{"user_id": userID}
	if filter.Visited != nil {
		where["visited"] = *filter.Visited
	}
	if filter.City != nil {
		where["city"] = *filter.City
	}
	if filter.Country != nil {
		where["country"] = *filter.Country
	}
	if filter.Priority != nil {
		where["priority"] = *filter.Priority
	}

	return s.queryPlaces(ctx, selectPlaces().Where(where))
}

// UpdatePlace verifies the requester owns the place and applies the update, in one transaction.
func (s *SQLiteStore) UpdatePlace(ctx context.Context, id, requesterID int64, update models.PlaceUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerID int64
	err = tx.QueryRowContext(ctx, "SELECT user_id FROM places WHERE id = ?", id).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("place %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get place owner: %w", err)
	}
	if ownerID != requesterID {
		return fmt.Errorf("place %d: %w", id, storage.ErrNotOwner)
	}

	visited := false
	if update.Visited != nil {
		visited = *update.Visited
	}

	builder := squirrel.Update("places").
		Set("name", update.Name).
		Set("visited", visited).
		Where(squirrel.Eq{"id": id})

	if update.Country != nil {
		builder = builder.Set("country", *update.Country)
	}
	if update.City != nil {
		builder = builder.Set("city", *update.City)
	}
	if update.Priority != nil {
		builder = builder.Set("priority", *update.Priority)
	}
	if update.Note != nil {
		builder = builder.Set("note", *update.Note)
	}
	if update.Image != "" {
		builder = builder.Set("image", update.Image)
	}

	q, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeletePlace removes a place and its reviews.
func (s *SQLiteStore) DeletePlace(ctx context.Context, id int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE place_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete place reviews: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM places WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete place: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete place: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// CountPlacesByVisited counts places of every user with the given visited flag.
func (s *SQLiteStore) CountPlacesByVisited(ctx context.Context, visited bool) (int64, error) {
	return s.count(ctx, squirrel.Select("COUNT(*)").From("places").
		Where(squirrel.Eq{"visited": visited}))
}

// CountUserPlacesByVisited counts one user's places with the given visited flag.
func (s *SQLiteStore) CountUserPlacesByVisited(ctx context.Context, userID int64, visited bool) (int64, error) {
	return s.count(ctx, squirrel.Select("COUNT(*)").From("places").
		Where(squirrel.Eq{"user_id": userID, "visited": visited}))
}

// CountDistinctCountries counts distinct countries across all users.
// A blank country counts as one value.
func (s *SQLiteStore) CountDistinctCountries(ctx context.Context) (int64, error) {
	return s.count(ctx, squirrel.Select("COUNT(DISTINCT country)").From("places"))
}

// SearchPlacesByName returns places whose name contains text, ignoring case.
// Text is matched literally; % and _ are not wildcards.
func (s *SQLiteStore) SearchPlacesByName(ctx context.Context, text string) ([]*models.Place, error) {
	return s.queryPlaces(ctx, selectPlaces().
		Where(squirrel.Expr(fmt.Sprintf("instr(%[1]s(name), %[1]s(?)) > 0", foldFunc), text)))
}

// FindPlacesByName returns places whose name equals name, ignoring case.
func (s *SQLiteStore) FindPlacesByName(ctx context.Context, name string) ([]*models.Place, error) {
	return s.queryPlaces(ctx, selectPlaces().
		Where(squirrel.Expr(fmt.Sprintf("%[1]s(name) = %[1]s(?)", foldFunc), name)))
}

func (s *SQLiteStore) queryPlaces(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Place, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build place query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	places := []*models.Place{}
	for rows.Next() {
		place, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate places: %w", err)
	}

	return places, nil
}

func scanPlace(row rowScanner) (*models.Place, error) {
	place := &models.Place{}
	var image sql.NullString

	if err := row.Scan(&place.ID, &place.Name, &place.Country, &place.City, &place.Priority,
		&place.Note, &place.Visited, &image, &place.UserID); err != nil {
		return nil, err
	}

	if image.Valid {
		place.Image = &image.String
	}

	return place, nil
}
