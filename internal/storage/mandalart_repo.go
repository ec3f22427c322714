package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type MandalartRepo struct {
	c conn
}

func (r *MandalartRepo) Insert(ctx context.Context, m *Mandalart) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.c.exec(ctx, `
		INSERT INTO mandalarts (id, user_id, title, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.UserID, m.Title, boolToInt(m.IsActive), m.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("mandalart insert: %w", err)
	}
	return nil
}

func (r *MandalartRepo) Get(ctx context.Context, id string) (*Mandalart, error) {
	row := r.c.queryRow(ctx, `
		SELECT id, user_id, title, is_active, created_at
		FROM mandalarts
		WHERE id = ?
	`, id)
	return scanMandalart(row)
}

// Active returns the user's most recently created active mandalart.
func (r *MandalartRepo) Active(ctx context.Context, userID string) (*Mandalart, error) {
	row := r.c.queryRow(ctx, `
		SELECT id, user_id, title, is_active, created_at
		FROM mandalarts
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	return scanMandalart(row)
}

func (r *MandalartRepo) ListByUser(ctx context.Context, userID string) ([]Mandalart, error) {
	rows, err := r.c.query(ctx, `
		SELECT id, user_id, title, is_active, created_at
		FROM mandalarts
		WHERE user_id = ?
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("mandalart list: %w", err)
	}
	defer rows.Close()

	var out []Mandalart
	for rows.Next() {
		m, err := scanMandalart(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mandalart list rows: %w", err)
	}
	return out, nil
}

// Deactivate clears is_active on every mandalart of the user.
func (r *MandalartRepo) Deactivate(ctx context.Context, userID string) error {
	if _, err := r.c.exec(ctx, `UPDATE mandalarts SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("mandalart deactivate: %w", err)
	}
	return nil
}

// Delete removes a mandalart with its sub-goals, actions and their checks.
// Call it inside a transaction.
func (r *MandalartRepo) Delete(ctx context.Context, id string) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"checks", `DELETE FROM check_history WHERE action_id IN (
			SELECT a.id FROM actions a JOIN sub_goals s ON s.id = a.sub_goal_id WHERE s.mandalart_id = ?)`},
		{"actions", `DELETE FROM actions WHERE sub_goal_id IN (SELECT id FROM sub_goals WHERE mandalart_id = ?)`},
		{"sub goals", `DELETE FROM sub_goals WHERE mandalart_id = ?`},
		{"mandalart", `DELETE FROM mandalarts WHERE id = ?`},
	}
	for _, s := range stmts {
		if _, err := r.c.exec(ctx, s.sql, id); err != nil {
			return fmt.Errorf("mandalart delete %s: %w", s.name, err)
		}
	}
	return nil
}

func scanMandalart(row scanner) (*Mandalart, error) {
	var (
		m      Mandalart
		active int
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &active, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("mandalart scan: %w", err)
	}
	m.IsActive = active != 0
	return &m, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}
