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

// selectReviews joins the place name and username onto each review.
func selectReviews() squirrel.SelectBuilder {
	return squirrel.Select(
		"r.id", "r.review_text", "r.rated_stars", "r.place_id", "r.user_id", "p.name", "u.username",
	).
		From("reviews r").
		Join("places p ON p.id = r.place_id").
		Join("users u ON u.id = r.user_id").
		OrderBy("r.id")
}

// CreateReview persists a new review. Foreign keys reject unknown places or users.
func (s *SQLiteStore) CreateReview(ctx context.Context, review *models.Review) error {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO reviews (review_text, rated_stars, place_id, user_id) VALUES (?, ?, ?, ?)",
		review.ReviewText, review.RatedStars, review.PlaceID, review.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read review id: %w", err)
	}
	review.ID = id

	return nil
}

// GetReview retrieves a review by ID. A missing review yields nil, nil.
func (s *SQLiteStore) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	q, args, err := selectReviews().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review query: %w", err)
	}

	review, err := scanReview(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// UpdateReview replaces the text and star rating of a review.
func (s *SQLiteStore) UpdateReview(ctx context.Context, review *models.Review) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET review_text = ?, rated_stars = ? WHERE id = ?",
		review.ReviewText, review.RatedStars, review.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("review %d: %w", review.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteReview removes a review by ID.
func (s *SQLiteStore) DeleteReview(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}

	return n > 0, nil
}

// ListReviewsByPlace retrieves all reviews for a place.
func (s *SQLiteStore) ListReviewsByPlace(ctx context.Context, placeID int64) ([]*models.Review, error) {
	return s.queryReviews(ctx, selectReviews().Where(squirrel.Eq{"r.place_id": placeID}))
}

// ListReviewsByUser retrieves all reviews written by a user.
func (s *SQLiteStore) ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error) {
	return s.queryReviews(ctx, selectReviews().Where(squirrel.Eq{"r.user_id": userID}))
}

// ListReviewsByPlaceIDs retrieves all reviews attached to any of the given places.
func (s *SQLiteStore) ListReviewsByPlaceIDs(ctx context.Context, placeIDs []int64) ([]*models.Review, error) {
	if len(placeIDs) == 0 {
		return []*models.Review{}, nil
	}

	return s.queryReviews(ctx, selectReviews().Where(squirrel.Eq{"r.place_id": placeIDs}))
}

func (s *SQLiteStore) queryReviews(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Review, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build review query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

func scanReview(row rowScanner) (*models.Review, error) {
	review := &models.Review{}
	if err := row.Scan(&review.ID, &review.ReviewText, &review.RatedStars, &review.PlaceID,
		&review.UserID, &review.PlaceName, &review.Username); err != nil {
		return nil, err
	}
	return review, nil
}
