// Package rollgame implements the join-and-roll group game.
// A session collects a fixed number of players, rolls one die per player as
// they join, and finishes once it is full or its join window times out.
package rollgame

import (
	"context"

	"dicebot/internal/model"
)

// Announcer publishes the end of a session on the chat surface that started it.
type Announcer interface {
	// Completed is called once when the last player joins.
	Completed(ctx context.Context, outcome *Outcome) error

	// TimedOut is called once when the join window closes before the session fills.
	TimedOut(ctx context.Context, view *View) error
}

// Recorder persists the rolls of a completed session in one write.
type Recorder interface {
	RecordBatch(ctx context.Context, dieSize int, entries []model.RollEntry) ([]*model.Roll, error)
}
