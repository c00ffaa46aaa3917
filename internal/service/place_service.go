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

// PlaceService manages users' places.
type PlaceService struct {
	places storage.PlaceStore
	users  storage.UserStore
	stats  invalidator
	logger *slog.Logger
}

// NewPlaceService creates a new PlaceService. stats may be nil.
func NewPlaceService(places storage.PlaceStore, users storage.UserStore, stats invalidator, logger *slog.Logger) *PlaceService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &PlaceService{
		places: places,
		users:  users,
		stats:  stats,
		logger: logger,
	}
}

// ListPlaces returns every place owned by userID.
func (s *PlaceService) ListPlaces(ctx context.Context, userID int64) ([]*models.Place, error) {
	return s.FilterPlaces(ctx, userID, models.PlaceFilter{})
}

// FilterPlaces returns the user's places restricted by the highest-precedence
// dimension set on filter (visited, then city, then country, then priority).
// Lower-precedence dimensions are ignored.
func (s *PlaceService) FilterPlaces(ctx context.Context, userID int64, filter models.PlaceFilter) ([]*models.Place, error) {
	places, err := s.places.ListPlaces(ctx, userID, filter.Effective())
	if err != nil {
		s.logger.ErrorContext(ctx, "FilterPlaces failed", "user_id", userID, "error", err)
		return nil, err
	}
	return places, nil
}

// GetPlace returns the place with the given id, or nil if there is none.
func (s *PlaceService) GetPlace(ctx context.Context, id int64) (*models.Place, error) {
	return s.places.GetPlace(ctx, id)
}

// CreatePlace saves a new place for place.UserID, which must be an existing user.
func (s *PlaceService) CreatePlace(ctx context.Context, place *models.Place) error {
	l := s.logger.With(slog.String("method", "CreatePlace"), slog.Int64("user_id", place.UserID))

	if strings.TrimSpace(place.Name) == "" {
		return fmt.Errorf("%w: place name is required", ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, place.UserID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve owner", "error", err)
		return err
	}
	if user == nil {
		l.WarnContext(ctx, "Invalid user ID")
		return fmt.Errorf("%w: invalid user ID %d", ErrValidation, place.UserID)
	}

	if err := s.places.CreatePlace(ctx, place); err != nil {
		l.ErrorContext(ctx, "Failed to save place", "error", err)
		return err
	}

	s.stats.Invalidate()
	l.InfoContext(ctx, "Place created", "place_id", place.ID)
	return nil
}

// UpdatePlace applies update to place id on behalf of requesterID.
// Only the owner may update a place; otherwise ErrUnauthorized is returned and
// the place is left unchanged.
func (s *PlaceService) UpdatePlace(ctx context.Context, id, requesterID int64, update models.PlaceUpdate) error {
	l := s.logger.With(slog.String("method", "UpdatePlace"), slog.Int64("place_id", id), slog.Int64("user_id", requesterID))

	if strings.TrimSpace(update.Name) == "" {
		return fmt.Errorf("%w: place name is required", ErrValidation)
	}
	if update.Rating != nil {
		l.DebugContext(ctx, "Ignoring rating on place update", "rating", *update.Rating)
	}

	err := s.places.UpdatePlace(ctx, id, requesterID, update)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: place %d", ErrNotFound, id)
	case errors.Is(err, storage.ErrNotOwner):
		l.WarnContext(ctx, "Rejected update of another user's place")
		return fmt.Errorf("%w: cannot edit someone else's place", ErrUnauthorized)
	case err != nil:
		l.ErrorContext(ctx, "Failed to update place", "error", err)
		return err
	}

	s.stats.Invalidate()
	l.InfoContext(ctx, "Place updated")
	return nil
}

// DeletePlace removes a place and its reviews. Returns false if the place does not exist.
func (s *PlaceService) DeletePlace(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.places.DeletePlace(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "DeletePlace failed", "place_id", id, "error", err)
		return false, err
	}
	if deleted {
		s.stats.Invalidate()
	}
	return deleted, nil
}

// SearchPlaces returns places of any user whose name contains text, ignoring case.
func (s *PlaceService) SearchPlaces(ctx context.Context, text string) ([]*models.Place, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", ErrValidation)
	}
	return s.places.SearchPlacesByName(ctx, text)
}

// CountPlacesByVisited counts visited (or wishlist) places across all users.
func (s *PlaceService) CountPlacesByVisited(ctx context.Context, visited bool) (int64, error) {
	return s.places.CountPlacesByVisited(ctx, visited)
}

// CountDistinctCountries counts distinct countries across all users.
func (s *PlaceService) CountDistinctCountries(ctx context.Context) (int64, error) {
	return s.places.CountDistinctCountries(ctx)
}
