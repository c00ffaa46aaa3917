// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/wanderlist/internal/models"
)

var (
	// ErrNotFound is returned by writes that target a row that does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwner is returned when a place is modified by a user who does not own it.
	ErrNotOwner = errors.New("place is owned by another user")
)

// UserStore defines user persistence operations.
// Lookups return nil and no error when the user does not exist.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field is populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	// GetUserByCredentials returns the first user whose username and password match exactly.
	GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error)

	// UpdateUser replaces username, password and email.
	// Returns ErrNotFound if the user does not exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser removes the user together with every place and review they own,
	// and every review attached to those places, in a single transaction.
	// Returns false if the user does not exist.
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// PlaceStore defines place persistence operations.
type PlaceStore interface {
	// CreatePlace persists a new place. The place.ID field is populated by the store.
	CreatePlace(ctx context.Context, place *models.Place) error

	GetPlace(ctx context.Context, id int64) (*models.Place, error)

	// ListPlaces returns the user's places in storage order, restricted by every
	// dimension set on filter. Callers apply precedence with PlaceFilter.Effective.
	ListPlaces(ctx context.Context, userID int64, filter models.PlaceFilter) ([]*models.Place, error)

	// UpdatePlace checks ownership and applies the update in one transaction.
	// Returns ErrNotFound or ErrNotOwner without modifying the place.
	UpdatePlace(ctx context.Context, id, requesterID int64, update models.PlaceUpdate) error

	// DeletePlace removes the place and its reviews. Returns false if the place does not exist.
	DeletePlace(ctx context.Context, id int64) (bool, error)

	// CountPlacesByVisited counts places across all users.
	CountPlacesByVisited(ctx context.Context, visited bool) (int64, error)

	CountUserPlacesByVisited(ctx context.Context, userID int64, visited bool) (int64, error)

	// CountDistinctCountries counts distinct countries across all users.
	CountDistinctCountries(ctx context.Context) (int64, error)

	// SearchPlacesByName matches places whose name contains text, ignoring case.
	SearchPlacesByName(ctx context.Context, text string) ([]*models.Place, error)

	// FindPlacesByName matches places whose name equals name, ignoring case.
	FindPlacesByName(ctx context.Context, name string) ([]*models.Place, error)
}

// ReviewStore defines review persistence operations.
// Reads populate Review.PlaceName and Review.Username.
type ReviewStore interface {
	// CreateReview persists a new review. The review.ID field is populated by the store.
	CreateReview(ctx context.Context, review *models.Review) error

	GetReview(ctx context.Context, id int64) (*models.Review, error)

	// UpdateReview replaces the text and star rating. Returns ErrNotFound if absent.
	UpdateReview(ctx context.Context, review *models.Review) error

	DeleteReview(ctx context.Context, id int64) (bool, error)

	ListReviewsByPlace(ctx context.Context, placeID int64) ([]*models.Review, error)

	ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error)

	// ListReviewsByPlaceIDs returns reviews whose place is in placeIDs.
	ListReviewsByPlaceIDs(ctx context.Context, placeIDs []int64) ([]*models.Review, error)
}

// Store combines every store with lifecycle operations.
// This abstraction allows swapping storage backends without changing the service layer.
type Store interface {
	UserStore
	PlaceStore
	ReviewStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
