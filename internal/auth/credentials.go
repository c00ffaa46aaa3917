package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/wanderlist/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStorage defines the user persistence operations the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// PlainAuthenticator stores passwords as given and compares them verbatim.
// It performs no hashing and no uniqueness checks.
type PlainAuthenticator struct {
	storage UserStorage
}

// NewPlainAuthenticator creates a new authenticator backed by storage.
func NewPlainAuthenticator(storage UserStorage) *PlainAuthenticator {
	return &PlainAuthenticator{storage: storage}
}

// Register persists the user as-is.
func (a *PlainAuthenticator) Register(ctx context.Context, user *models.User) error {
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Authenticate looks up a user by exact username and password.
func (a *PlainAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByCredentials(ctx, username, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
