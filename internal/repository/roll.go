package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dicebot/internal/model"
)

const insertRollQuery = `
	INSERT INTO rolls (user_id, die_size, result)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, die_size, result, created_at
`

// RollRepository handles roll data persistence.
type RollRepository struct {
	pool *pgxpool.Pool
}

// NewRollRepository creates a new RollRepository instance.
func NewRollRepository(pool *pgxpool.Pool) *RollRepository {
	return &RollRepository{pool: pool}
}

var _ RollStore = (*RollRepository)(nil)

// Create inserts a single roll record.
func (r *RollRepository) Create(ctx context.Context, userID int64, dieSize, result int) (*model.Roll, error) {
	rows, err := r.pool.Query(ctx, insertRollQuery, userID, dieSize, result)
	if err != nil {
		return nil, fmt.Errorf("failed to create roll: %w", err)
	}

	roll, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Roll])
	if err != nil {
		return nil, fmt.Errorf("failed to create roll: %w", err)
	}

	return roll, nil
}

// CreateBatch inserts one roll per entry inside a transaction.
// Either every roll is stored or none is.
func (r *RollRepository) CreateBatch(ctx context.Context, dieSize int, entries []model.RollEntry) ([]*model.Roll, error) {
	if len(entries) == 0 {
		return []*model.Roll{}, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rolls := make([]*model.Roll, 0, len(entries))
	for _, entry := range entries {
		rows, err := tx.Query(ctx, insertRollQuery, entry.UserID, dieSize, entry.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to create roll for user %d: %w", entry.UserID, err)
		}

		roll, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Roll])
		if err != nil {
			return nil, fmt.Errorf("failed to create roll for user %d: %w", entry.UserID, err)
		}
		rolls = append(rolls, roll)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit roll batch: %w", err)
	}

	return rolls, nil
}

// GetByUserID retrieves a user's rolls, ordered by creation time (newest first).
func (r *RollRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*model.Roll, error) {
	const query = `
		SELECT id, user_id, die_size, result, created_at
		FROM rolls
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	return r.queryRolls(ctx, query, userID, limit)
}

// GetAllByUserID retrieves every roll of a user in insertion order.
func (r *RollRepository) GetAllByUserID(ctx context.Context, userID int64) ([]*model.Roll, error) {
	const query = `
		SELECT id, user_id, die_size, result, created_at
		FROM rolls
		WHERE user_id = $1
		ORDER BY id ASC
	`

	return r.queryRolls(ctx, query, userID)
}

// GetByDieSize retrieves every roll on a die in insertion order.
func (r *RollRepository) GetByDieSize(ctx context.Context, dieSize int) ([]*model.Roll, error) {
	const query = `
		SELECT id, user_id, die_size, result, created_at
		FROM rolls
		WHERE die_size = $1
		ORDER BY id ASC
	`

	return r.queryRolls(ctx, query, dieSize)
}

func (r *RollRepository) queryRolls(ctx context.Context, query string, args ...any) ([]*model.Roll, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}

	rolls, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Roll])
	if err != nil {
		return nil, fmt.Errorf("failed to scan rolls: %w", err)
	}

	return rolls, nil
}
