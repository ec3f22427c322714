package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AwardRepo records one-shot XP bonuses. The (user, kind, day) key makes
// each award payable at most once.
type AwardRepo struct {
	c conn
}

// Insert stores the award and reports whether it was new.
func (r *AwardRepo) Insert(ctx context.Context, a *XPAward) (bool, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	res, err := r.c.exec(ctx, `
		INSERT INTO xp_awards (id, user_id, kind, awarded_on, xp, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, kind, awarded_on) DO NOTHING
	`, a.ID, a.UserID, a.Kind, a.AwardedOn, a.XP, a.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("award insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *AwardRepo) ListByUser(ctx context.Context, userID string) ([]XPAward, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, user_id, kind, awarded_on, xp, created_at
		FROM xp_awards
		WHERE user_id = ?
		ORDER BY awarded_on ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("award list: %w", err)
	}
	defer rows.Close()

	var out []XPAward
	for rows.Next() {
		var a XPAward
		if err := rows.Scan(&a.ID, &a.UserID, &a.Kind, &a.AwardedOn, &a.XP, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("award scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("award list rows: %w", err)
	}
	return out, nil
}
