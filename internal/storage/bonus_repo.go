package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BonusRepo stores XP multiplier grants (user_bonus_xp).
type BonusRepo struct {
	c conn
}

func (r *BonusRepo) Insert(ctx context.Context, g *BonusGrant) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO user_bonus_xp (id, user_id, bonus_type, multiplier, activated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.BonusType, g.Multiplier, g.ActivatedAt.UTC(), g.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("bonus insert: %w", err)
	}
	return nil
}

// ListActive returns the user's grants that expire after now.
func (r *BonusRepo) ListActive(ctx context.Context, userID string, now time.Time) ([]BonusGrant, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, user_id, bonus_type, multiplier, activated_at, expires_at
		FROM user_bonus_xp
		WHERE user_id = ? AND expires_at > ?
		ORDER BY expires_at DESC
	`, userID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("bonus list: %w", err)
	}
	defer rows.Close()

	var out []BonusGrant
	for rows.Next() {
		var g BonusGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.BonusType, &g.Multiplier, &g.ActivatedAt, &g.ExpiresAt); err != nil {
			return nil, fmt.Errorf("bonus scan: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bonus list rows: %w", err)
	}
	return out, nil
}

// CountActive counts unexpired grants of one type.
func (r *BonusRepo) CountActive(ctx context.Context, userID, bonusType string, now time.Time) (int, error) {
	row := r.c.queryRow(ctx, `
		SELECT COUNT(*)
		FROM user_bonus_xp
		WHERE user_id = ? AND bonus_type = ? AND expires_at > ?
	`, userID, bonusType, now.UTC())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("bonus count: %w", err)
	}
	return n, nil
}
