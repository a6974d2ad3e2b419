// Package cache provides a Redis-backed cache for computed leaderboards.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dicebot/internal/model"
)

const (
	leaderboardKeyPrefix = "leaderboard:d"

	// DefaultTTL bounds how long a leaderboard may be served without a recompute.
	DefaultTTL = 5 * time.Minute
)

// Config holds configuration for the leaderboard cache.
type Config struct {
	RedisClient *redis.Client
	TTL         time.Duration
}

// LeaderboardCache stores ranked leaderboards per die size.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLeaderboard creates a leaderboard cache and verifies the connection.
func NewLeaderboard(ctx context.Context, cfg *Config) (*LeaderboardCache, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &LeaderboardCache{
		client: cfg.RedisClient,
		ttl:    ttl,
	}, nil
}

func leaderboardKey(dieSize int) string {
	return fmt.Sprintf("%s%d", leaderboardKeyPrefix, dieSize)
}

// versionKey counts invalidations of a die's leaderboard.
func versionKey(dieSize int) string {
	return leaderboardKey(dieSize) + ":version"
}

// Get returns the cached leaderboard for dieSize. The bool is false on a miss.
func (c *LeaderboardCache) Get(ctx context.Context, dieSize int) ([]*model.LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, leaderboardKey(dieSize)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	var entries []*model.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal leaderboard: %w", err)
	}

	return entries, true, nil
}

// Version returns the invalidation counter for dieSize. Read it before
// computing a leaderboard and hand it to Set.
func (c *LeaderboardCache) Version(ctx context.Context, dieSize int) (int64, error) {
	version, err := readVersion(ctx, c.client, dieSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get leaderboard version: %w", err)
	}
	return version, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readVersion(ctx context.Context, cmd getter, dieSize int) (int64, error) {
	version, err := cmd.Get(ctx, versionKey(dieSize)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// Set stores the leaderboard for dieSize until the TTL passes or it is invalidated.
// Nothing is stored when an invalidation happened after version was read; the
// bool reports whether the leaderboard was stored.
func (c *LeaderboardCache) Set(ctx context.Context, dieSize int, version int64, entries []*model.LeaderboardEntry) (bool, error) {
	if entries == nil {
		entries = []*model.LeaderboardEntry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return false, fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, dieSize)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, leaderboardKey(dieSize), data, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, versionKey(dieSize))

	switch {
	case errors.Is(err, redis.TxFailedErr):
		// Invalidated between the version check and the write.
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to set leaderboard: %w", err)
	}

	return stored, nil
}

// Invalidate drops the cached leaderboards for the given die sizes and bumps
// their versions so in-flight computations are not stored.
func (c *LeaderboardCache) Invalidate(ctx context.Context, dieSizes ...int) error {
	if len(dieSizes) == 0 {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, size := range dieSizes {
			pipe.Incr(ctx, versionKey(size))
			pipe.Del(ctx, leaderboardKey(size))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate leaderboard: %w", err)
	}

	return nil
}
