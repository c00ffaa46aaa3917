// Package service implements the Wanderlist business logic on top of the storage layer.
package service

import (
	"log/slog"
	"time"

	"github.com/mmynk/wanderlist/internal/auth"
	"github.com/mmynk/wanderlist/internal/storage"
)

// Services groups every service built over one store.
type Services struct {
	Users   *UserService
	Places  *PlaceService
	Reviews *ReviewService
	Stats   *StatsService
}

// Options configures New.
type Options struct {
	// Tokens signs login tokens. Nil disables token issuance.
	Tokens *auth.JWTManager

	// StatsTTL is how long computed stats are cached. Zero disables the cache.
	StatsTTL time.Duration
}

// New wires the services together. Writes that change place counts invalidate cached stats.
func New(store storage.Store, opts Options, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}

	stats := NewStatsService(store, opts.StatsTTL, logger)

	return &Services{
		Users:   NewUserService(store, auth.NewPlainAuthenticator(store), opts.Tokens, stats, logger),
		Places:  NewPlaceService(store, store, stats, logger),
		Reviews: NewReviewService(store, store, store, logger),
		Stats:   stats,
	}
}

// invalidator drops cached derived data after a write.
type invalidator interface {
	Invalidate()
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}
