package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"dicebot/internal/model"
	"dicebot/internal/repository"
)

// StatsService derives averages and leaderboards from stored rolls.
type StatsService struct {
	repo  repository.RollStore
	cache LeaderboardCache
}

// NewStatsService creates a new StatsService instance. cache may be nil.
func NewStatsService(repo repository.RollStore, cache LeaderboardCache) *StatsService {
	return &StatsService{
		repo:  repo,
		cache: cache,
	}
}

// Averages returns the user's running average per die size, smallest die first.
// A user with no rolls gets an empty slice.
func (s *StatsService) Averages(ctx context.Context, userID int64) ([]model.DieAverage, error) {
	rolls, err := s.repo.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rolls: %w", err)
	}

	return RunningAverages(rolls), nil
}

// Leaderboard ranks every user with at least one roll on dieSize by running average.
// The full ranking is returned; callers truncate for display.
func (s *StatsService) Leaderboard(ctx context.Context, dieSize int) ([]*model.LeaderboardEntry, error) {
	cacheable := false
	var version int64
	if s.cache != nil {
		entries, ok, err := s.cache.Get(ctx, dieSize)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("die_size", dieSize).Msg("Leaderboard cache read failed")
		case ok:
			return entries, nil
		}

		// The version is read before the rolls so a write that lands during
		// the read keeps this ranking out of the cache.
		version, err = s.cache.Version(ctx, dieSize)
		if err != nil {
			log.Warn().Err(err).Int("die_size", dieSize).Msg("Leaderboard cache version read failed")
		} else {
			cacheable = true
		}
	}

	rolls, err := s.repo.GetByDieSize(ctx, dieSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load rolls: %w", err)
	}

	entries := RankLeaderboard(rolls)

	if cacheable {
		stored, err := s.cache.Set(ctx, dieSize, version, entries)
		switch {
		case err != nil:
			log.Warn().Err(err).Int("die_size", dieSize).Msg("Leaderboard cache write failed")
		case !stored:
			log.Debug().Int("die_size", dieSize).Msg("Leaderboard changed while computing, not cached")
		}
	}

	return entries, nil
}
