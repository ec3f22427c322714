package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type SubGoalRepo struct {
	c conn
}

func (r *SubGoalRepo) Insert(ctx context.Context, g *SubGoal) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO sub_goals (id, mandalart_id, title, position, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, g.ID, g.MandalartID, g.Title, g.Position, g.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("sub goal insert: %w", err)
	}
	return nil
}

func (r *SubGoalRepo) Get(ctx context.Context, id string) (*SubGoal, error) {
	row := r.c.queryRow(ctx, `
		SELECT id, mandalart_id, title, position, created_at
		FROM sub_goals
		WHERE id = ?
	`, id)
	var g SubGoal
	if err := row.Scan(&g.ID, &g.MandalartID, &g.Title, &g.Position, &g.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sub goal get: %w", err)
	}
	return &g, nil
}

func (r *SubGoalRepo) ListByMandalart(ctx context.Context, mandalartID string) ([]SubGoal, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, mandalart_id, title, position, created_at
		FROM sub_goals
		WHERE mandalart_id = ?
		ORDER BY position ASC
	`, mandalartID)
	if err != nil {
		return nil, fmt.Errorf("sub goal list: %w", err)
	}
	defer rows.Close()

	var out []SubGoal
	for rows.Next() {
		var g SubGoal
		if err := rows.Scan(&g.ID, &g.MandalartID, &g.Title, &g.Position, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("sub goal scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sub goal list rows: %w", err)
	}
	return out, nil
}

func (r *SubGoalRepo) Count(ctx context.Context, mandalartID string) (int, error) {
	row := r.c.queryRow(ctx, `SELECT COUNT(*) FROM sub_goals WHERE mandalart_id = ?`, mandalartID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("sub goal count: %w", err)
	}
	return n, nil
}
