package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/wanderlist/internal/models"
	"github.com/mmynk/wanderlist/internal/storage"
)

// StatsService computes per-user travel statistics.
type StatsService struct {
	places storage.PlaceStore
	cache  *cache.Cache
	logger *slog.Logger

	// generation is bumped by Invalidate. A result is only cached if no
	// invalidation happened while it was being computed.
	generation atomic.Uint64
	mu         sync.Mutex
}

// NewStatsService creates a new StatsService. A ttl of zero disables caching.
func NewStatsService(places storage.PlaceStore, ttl time.Duration, logger *slog.Logger) *StatsService {
	s := &StatsService{
		places: places,
		logger: logger,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// GetStats returns the user's wishlist and travelled counts together with the
// number of distinct countries across all users. Unknown users get zero counts.
func (s *StatsService) GetStats(ctx context.Context, userID int64) (*models.Stats, error) {
	l := s.logger.With(slog.String("method", "GetStats"), slog.Int64("user_id", userID))
	key := strconv.FormatInt(userID, 10)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			stats := cached.(models.Stats)
			l.DebugContext(ctx, "Stats served from cache")
			return &stats, nil
		}
	}

	gen := s.generation.Load()

	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.places.CountUserPlacesByVisited(gctx, userID, false)
		if err != nil {
			return fmt.Errorf("wishlist count: %w", err)
		}
		stats.WishlistCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.places.CountUserPlacesByVisited(gctx, userID, true)
		if err != nil {
			return fmt.Errorf("travelled count: %w", err)
		}
		stats.TravelledCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.places.CountDistinctCountries(gctx)
		if err != nil {
			return fmt.Errorf("countries count: %w", err)
		}
		stats.CountriesCount = n
		return nil
	})

	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to compute stats", "error", err)
		return nil, err
	}

	if s.cache != nil {
		s.store(key, gen, stats)
	}

	l.InfoContext(ctx, "Stats computed",
		slog.Int64("wishlist", stats.WishlistCount),
		slog.Int64("travelled", stats.TravelledCount),
		slog.Int64("countries", stats.CountriesCount))
	return &stats, nil
}

// store caches stats computed during generation gen, unless a write has
// invalidated the cache since.
func (s *StatsService) store(key string, gen uint64, stats models.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		return
	}
	s.cache.Set(key, stats, cache.DefaultExpiration)
}

// Invalidate drops every cached result. Country counts span all users, so any
// place write can change every user's stats.
func (s *StatsService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Flush()
	}
}
