// Package repository provides data access layer implementations.
package repository

import (
	"context"

	"dicebot/internal/model"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roll_store.go dicebot/internal/repository RollStore

// RollStore persists and reads roll records.
type RollStore interface {
	// Create appends one roll. The store assigns id and created_at.
	Create(ctx context.Context, userID int64, dieSize, result int) (*model.Roll, error)

	// CreateBatch appends one roll per entry on the same die in a single transaction.
	CreateBatch(ctx context.Context, dieSize int, entries []model.RollEntry) ([]*model.Roll, error)

	// GetByUserID returns a user's most recent rolls, newest first.
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.Roll, error)

	// GetAllByUserID returns every roll of a user in insertion order.
	GetAllByUserID(ctx context.Context, userID int64) ([]*model.Roll, error)

	// GetByDieSize returns every roll on a die across users in insertion order.
	GetByDieSize(ctx context.Context, dieSize int) ([]*model.Roll, error)
}
