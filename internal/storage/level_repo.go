package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type LevelRepo struct {
	c conn
}

func (r *LevelRepo) Get(ctx context.Context, userID string) (*UserLevel, error) {
	row := r.c.queryRow(ctx, `SELECT user_id, level, total_xp FROM user_levels WHERE user_id = ?`, userID)
	return scanLevel(row)
}

func (r *LevelRepo) GetOrCreate(ctx context.Context, userID string) (*UserLevel, error) {
	l, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if l != nil {
		return l, nil
	}

	_, err = r.c.exec(ctx, `
		INSERT INTO user_levels (user_id, level, total_xp) VALUES (?, 1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("level insert: %w", err)
	}
	return r.Get(ctx, userID)
}

// Lock creates the user's level row if needed and locks it for the rest of
// the transaction. SQLite already holds the database write lock for
// immediate transactions, so only Postgres needs FOR UPDATE.
func (r *LevelRepo) Lock(ctx context.Context, userID string) (*UserLevel, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	if r.c.d != DialectPostgres {
		return r.Get(ctx, userID)
	}
	row := r.c.queryRow(ctx, `SELECT user_id, level, total_xp FROM user_levels WHERE user_id = ? FOR UPDATE`, userID)
	return scanLevel(row)
}

func (r *LevelRepo) Update(ctx context.Context, l *UserLevel) error {
	_, err := r.c.exec(ctx, `UPDATE user_levels SET level = ?, total_xp = ? WHERE user_id = ?`, l.Level, l.TotalXP, l.UserID)
	if err != nil {
		return fmt.Errorf("level update: %w", err)
	}
	return nil
}

func scanLevel(row scanner) (*UserLevel, error) {
	var l UserLevel
	if err := row.Scan(&l.UserID, &l.Level, &l.TotalXP); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("level get: %w", err)
	}
	return &l, nil
}
