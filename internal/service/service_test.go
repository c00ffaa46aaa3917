package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupServices creates services over a fresh temp-file database.
func setupServices(t *testing.T, opts Options) (*Services, *sqlite.SQLiteStore) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return New(store, opts, discardLogger()), store
}

func defaultOptions() Options {
	return Options{
		Tokens:   auth.NewJWTManager("test-secret", time.Hour),
		StatsTTL: time.Minute,
	}
}

func registerUser(t *testing.T, svc *Services, username string) *models.User {
	t.Helper()
	user, err := svc.Users.Register(context.Background(), models.NewUser(username, "pw-"+username, username+"@example.com"))
	require.NoError(t, err)
	return user
}

func createPlace(t *testing.T, svc *Services, place *models.Place) *models.Place {
	t.Helper()
	require.NoError(t, svc.Places.CreatePlace(context.Background(), place))
	return place
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
