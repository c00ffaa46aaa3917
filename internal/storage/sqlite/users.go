package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage"
)

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password, email)
		VALUES (?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.Password,
		user.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, password, email
		FROM users
		WHERE id = ?
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByCredentials retrieves the oldest user whose username and password match exactly.
func (s *SQLiteStore) GetUserByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	query := `
		SELECT id, username, password, email
		FROM users
		WHERE username = ? AND password = ?
		ORDER BY id
		LIMIT 1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, username, password))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by credentials: %w", err)
	}

	return user, nil
}

// UpdateUser replaces the username, password and email of an existing user.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, password = ?, email = ? WHERE id = ?",
		user.Username, user.Password, user.Email, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", user.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteUser removes a user and everything they own.
// Reviews go first (the user's own and any left on the user's places), then places, then the user.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"DELETE FROM reviews WHERE user_id = ? OR place_id IN (SELECT id FROM places WHERE user_id = ?)",
		id, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete user reviews: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM places WHERE user_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete user places: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// scanUser scans a single user row. A missing row yields nil, nil.
func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&user.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}
