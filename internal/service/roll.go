package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"dicebot/internal/game/dice"
	"dicebot/internal/model"
	"dicebot/internal/repository"
)

// ErrInvalidLimit is returned when a history limit is not positive.
var ErrInvalidLimit = errors.New("limit must be at least 1")

// RollService rolls dice and records the results.
type RollService struct {
	repo   repository.RollStore
	roller dice.Roller
	cache  LeaderboardCache
}

// NewRollService creates a new RollService instance. cache may be nil.
func NewRollService(repo repository.RollStore, roller dice.Roller, cache LeaderboardCache) *RollService {
	return &RollService{
		repo:   repo,
		roller: roller,
		cache:  cache,
	}
}

// Roll draws a result on dieSize for userID and stores it.
func (s *RollService) Roll(ctx context.Context, userID int64, dieSize int) (*model.Roll, error) {
	result, err := s.roller.Roll(dieSize)
	if err != nil {
		return nil, err
	}

	roll, err := s.repo.Create(ctx, userID, dieSize, result)
	if err != nil {
		return nil, fmt.Errorf("failed to record roll: %w", err)
	}

	s.invalidate(ctx, dieSize)

	log.Debug().
		Int64("user_id", userID).
		Int("die_size", dieSize).
		Int("result", result).
		Msg("Roll recorded")

	return roll, nil
}

// History returns up to limit of the user's most recent rolls, newest first.
func (s *RollService) History(ctx context.Context, userID int64, limit int) ([]*model.Roll, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}

	rolls, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return rolls, nil
}

// RecordBatch stores the results of a finished game in one write.
func (s *RollService) RecordBatch(ctx context.Context, dieSize int, entries []model.RollEntry) ([]*model.Roll, error) {
	rolls, err := s.repo.CreateBatch(ctx, dieSize, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to record game rolls: %w", err)
	}

	s.invalidate(ctx, dieSize)

	return rolls, nil
}

// invalidate drops the cached leaderboard for dieSize.
// The write already succeeded, so a cache failure is logged rather than returned.
func (s *RollService) invalidate(ctx context.Context, dieSize int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, dieSize); err != nil {
		log.Warn().Err(err).Int("die_size", dieSize).Msg("Failed to invalidate leaderboard cache")
	}
}
