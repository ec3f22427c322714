package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CheckRepo struct {
	c conn
}

func (r *CheckRepo) Insert(ctx context.Context, ch *Check) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO check_history (id, user_id, action_id, checked_at, xp_awarded)
		VALUES (?, ?, ?, ?, ?)
	`, ch.ID, ch.UserID, ch.ActionID, ch.CheckedAt.UTC(), ch.XPAwarded)
	if err != nil {
		return fmt.Errorf("check insert: %w", err)
	}
	return nil
}

// ListSince returns the user's checks at or after since, oldest first. A zero
// since returns the full history.
func (r *CheckRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]Check, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, user_id, action_id, checked_at, xp_awarded
		FROM check_history
		WHERE user_id = ? AND checked_at >= ?
		ORDER BY checked_at ASC
	`, userID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("check list: %w", err)
	}
	defer rows.Close()

	var out []Check
	for rows.Next() {
		var ch Check
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.ActionID, &ch.CheckedAt, &ch.XPAwarded); err != nil {
			return nil, fmt.Errorf("check scan: %w", err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("check list rows: %w", err)
	}
	return out, nil
}

// FindInRange returns the most recent check of an action within [from, to].
func (r *CheckRepo) FindInRange(ctx context.Context, userID, actionID string, from, to time.Time) (*Check, error) {
	row := r.c.queryRow(ctx, `
		SELECT id, user_id, action_id, checked_at, xp_awarded
		FROM check_history
		WHERE user_id = ? AND action_id = ? AND checked_at >= ? AND checked_at <= ?
		ORDER BY checked_at DESC
		LIMIT 1
	`, userID, actionID, from.UTC(), to.UTC())
	return scanCheck(row, "check find")
}

// Last returns the user's most recent check of any action.
func (r *CheckRepo) Last(ctx context.Context, userID string) (*Check, error) {
	row := r.c.queryRow(ctx, `
		SELECT id, user_id, action_id, checked_at, xp_awarded
		FROM check_history
		WHERE user_id = ?
		ORDER BY checked_at DESC
		LIMIT 1
	`, userID)
	return scanCheck(row, "check last")
}

func (r *CheckRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.c.exec(ctx, `DELETE FROM check_history WHERE id = ?`, id); err != nil {
		return fmt.Errorf("check delete: %w", err)
	}
	return nil
}

func scanCheck(row scanner, op string) (*Check, error) {
	var ch Check
	if err := row.Scan(&ch.ID, &ch.UserID, &ch.ActionID, &ch.CheckedAt, &ch.XPAwarded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &ch, nil
}
