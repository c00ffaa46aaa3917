package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage"
)

// UserService manages user accounts and login.
type UserService struct {
	users         storage.UserStore
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
	stats         invalidator
	logger        *slog.Logger
}

// NewUserService creates a new UserService. tokens and stats may be nil.
func NewUserService(users storage.UserStore, authenticator auth.Authenticator, tokens *auth.JWTManager, stats invalidator, logger *slog.Logger) *UserService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &UserService{
		users:         users,
		authenticator: authenticator,
		tokens:        tokens,
		stats:         stats,
		logger:        logger,
	}
}

// GetUser returns the user with the given id, or nil if there is none.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "GetUser failed", "user_id", id, "error", err)
		return nil, err
	}
	return user, nil
}

// Register persists a new user as given. Usernames are not checked for uniqueness.
func (s *UserService) Register(ctx context.Context, user *models.User) (*models.User, error) {
	s.logger.InfoContext(ctx, "Register request", "username", user.Username)

	if err := s.authenticator.Register(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "Registration failed", "username", user.Username, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and returns the user and, when token signing is
// configured, a bearer token.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.authenticator.Authenticate(ctx, username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.WarnContext(ctx, "Login failed", "username", username)
		return nil, "", fmt.Errorf("%w: %s", ErrUnauthenticated, username)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Login failed", "username", username, "error", err)
		return nil, "", err
	}

	var token string
	if s.tokens != nil {
		token, err = s.tokens.Generate(user)
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to generate token", "user_id", user.ID, "error", err)
			return nil, "", err
		}
	}

	s.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, token, nil
}

// UpdateUser replaces the username, password and email of user id.
func (s *UserService) UpdateUser(ctx context.Context, id int64, fields *models.User) (*models.User, error) {
	updated := &models.User{
		ID:       id,
		Username: fields.Username,
		Password: fields.Password,
		Email:    fields.Email,
	}

	err := s.users.UpdateUser(ctx, updated)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "UpdateUser failed", "user_id", id, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "User updated", "user_id", id)
	return updated, nil
}

// DeleteUser removes the user with all their places and reviews.
// Returns false if the user does not exist.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "DeleteUser failed", "user_id", id, "error", err)
		return false, err
	}

	if deleted {
		s.stats.Invalidate()
		s.logger.InfoContext(ctx, "User deleted", "user_id", id)
	}
	return deleted, nil
}
