// Package service provides business logic implementations.
package service

import (
	"context"

	"dicebot/internal/model"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_leaderboard_cache.go dicebot/internal/service LeaderboardCache

// LeaderboardCache caches computed leaderboards per die size.
// A nil LeaderboardCache disables caching.
type LeaderboardCache interface {
	Get(ctx context.Context, dieSize int) ([]*model.LeaderboardEntry, bool, error)
	// Version changes on every Invalidate of dieSize.
	Version(ctx context.Context, dieSize int) (int64, error)
	// Set stores entries only if the version is still current.
	Set(ctx context.Context, dieSize int, version int64, entries []*model.LeaderboardEntry) (bool, error)
	Invalidate(ctx context.Context, dieSizes ...int) error
}
