package auth

import (
	"context"

	"github.com/mmynk/wanderlist/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping credential checks without changing the service layer code.
type Authenticator interface {
	// Register creates a new user account. The user's ID is populated on success.
	Register(ctx context.Context, user *models.User) error

	// Authenticate verifies the credentials and returns the matching user.
	// Returns ErrInvalidCredentials if no user matches.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)
}
