package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage"
)

// Star ratings accepted on reviews, inclusive.
const (
	MinStars = 1
	MaxStars = 5
)

// ReviewService manages reviews and the place-name search over them.
type ReviewService struct {
	reviews storage.ReviewStore
	places  storage.PlaceStore
	users   storage.UserStore
	logger  *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviews storage.ReviewStore, places storage.PlaceStore, users storage.UserStore, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		places:  places,
		users:   users,
		logger:  logger,
	}
}

// CreateReview attaches a review by userID to placeID.
// Both ids must resolve; otherwise ErrValidation is returned and nothing is saved.
func (s *ReviewService) CreateReview(ctx context.Context, placeID, userID int64, text string, rating int) (*models.Review, error) {
	s.logger.DebugContext(ctx, "CreateReview request received", "place_id", placeID, "user_id", userID)

	if err := validateStars(rating); err != nil {
		return nil, err
	}

	place, err := s.places.GetPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if place == nil || user == nil {
		s.logger.WarnContext(ctx, "CreateReview rejected",
			"place_id", placeID, "place_found", place != nil,
			"user_id", userID, "user_found", user != nil,
		)
		return nil, fmt.Errorf("%w: invalid place or user ID", ErrValidation)
	}

	review := models.NewReview(placeID, userID, text, rating)
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "CreateReview failed", "error", err)
		return nil, err
	}
	review.PlaceName = place.Name
	review.Username = user.Username

	s.logger.InfoContext(ctx, "Review created", "review_id", review.ID, "place_id", placeID)
	return review, nil
}

// GetReview returns the review with the given id, or nil if there is none.
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	return s.reviews.GetReview(ctx, id)
}

// UpdateReview replaces the text and rating of review id.
func (s *ReviewService) UpdateReview(ctx context.Context, id int64, text string, rating int) (*models.Review, error) {
	if err := validateStars(rating); err != nil {
		return nil, err
	}

	err := s.reviews.UpdateReview(ctx, &models.Review{ID: id, ReviewText: text, RatedStars: rating})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "UpdateReview failed", "review_id", id, "error", err)
		return nil, err
	}

	review, err := s.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		// deleted between the write and the read
		return nil, fmt.Errorf("%w: review %d", ErrNotFound, id)
	}
	return review, nil
}

// DeleteReview removes a review. Returns false if it does not exist.
func (s *ReviewService) DeleteReview(ctx context.Context, id int64) (bool, error) {
	return s.reviews.DeleteReview(ctx, id)
}

// ListReviewsForPlace returns all reviews of a place.
func (s *ReviewService) ListReviewsForPlace(ctx context.Context, placeID int64) ([]*models.Review, error) {
	return s.reviews.ListReviewsByPlace(ctx, placeID)
}

// ListReviewsByUser returns all reviews written by a user.
func (s *ReviewService) ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error) {
	return s.reviews.ListReviewsByUser(ctx, userID)
}

// SearchReviewsByPlaceName returns reviews of every place whose name contains partialName.
// When no place matches, reviews are not queried at all.
func (s *ReviewService) SearchReviewsByPlaceName(ctx context.Context, partialName string) ([]*models.Review, error) {
	partialName = strings.TrimSpace(partialName)
	if partialName == "" {
		return nil, fmt.Errorf("%w: place name is required", ErrValidation)
	}

	places, err := s.places.SearchPlacesByName(ctx, partialName)
	if err != nil {
		s.logger.ErrorContext(ctx, "SearchReviewsByPlaceName failed", "name", partialName, "error", err)
		return nil, err
	}

	return s.reviewsForPlaces(ctx, places)
}

// ReviewsByExactPlaceName returns reviews of every place named name, ignoring case.
func (s *ReviewService) ReviewsByExactPlaceName(ctx context.Context, name string) ([]*models.Review, error) {
	places, err := s.places.FindPlacesByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.reviewsForPlaces(ctx, places)
}

func (s *ReviewService) reviewsForPlaces(ctx context.Context, places []*models.Place) ([]*models.Review, error) {
	if len(places) == 0 {
		return []*models.Review{}, nil
	}

	placeIDs := make([]int64, len(places))
	for i, p := range places {
		placeIDs[i] = p.ID
	}

	return s.reviews.ListReviewsByPlaceIDs(ctx, placeIDs)
}

func validateStars(rating int) error {
	if rating < MinStars || rating > MaxStars {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrValidation, MinStars, MaxStars)
	}
	return nil
}
