// Package model defines the data models shared by the dice bot packages.
package model

import "time"

// Roll is a single persisted die roll.
// Rows in the rolls table are append-only: id and created_at are assigned by the store.
type Roll struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	DieSize   int       `db:"die_size"`
	Result    int       `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

// RollEntry is one user's result inside a batch write.
type RollEntry struct {
	UserID int64
	Result int
}

// DieAverage is a user's running average for one die size.
type DieAverage struct {
	DieSize int
	Average float64
}

// LeaderboardEntry is a user's running average on the die a leaderboard was built for.
type LeaderboardEntry struct {
	UserID  int64   `json:"user_id"`
	Average float64 `json:"average"`
	Rolls   int     `json:"rolls"`
}

// Default command arguments.
const (
	DefaultDieSize     = 100
	DefaultPlayerCount = 2
	HistoryLimit       = 10
	LeaderboardLimit   = 10
)
