package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ActionRepo struct {
	c conn
}

const actionColumns = `a.id, a.sub_goal_id, a.title, a.position, a.type,
	a.routine_frequency, a.routine_weekdays, a.routine_count_per_period,
	a.mission_completion_type, a.mission_period_cycle,
	a.mission_current_period_start, a.mission_current_period_end, a.mission_status,
	a.ai_suggestion, a.created_at`

func (r *ActionRepo) Insert(ctx context.Context, a *Action) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	weekdays, err := weekdaysJSON(a.RoutineWeekdays)
	if err != nil {
		return err
	}
	_, err = r.c.exec(ctx, `
		INSERT INTO actions (
			id, sub_goal_id, title, position, type,
			routine_frequency, routine_weekdays, routine_count_per_period,
			mission_completion_type, mission_period_cycle,
			mission_current_period_start, mission_current_period_end, mission_status,
			ai_suggestion, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.SubGoalID, a.Title, a.Position, a.Type,
		a.RoutineFrequency, weekdays, a.RoutineCountPerPeriod,
		a.MissionCompletionType, a.MissionPeriodCycle,
		utcPtr(a.MissionPeriodStart), utcPtr(a.MissionPeriodEnd), a.MissionStatus,
		a.AISuggestion, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("action insert: %w", err)
	}
	return nil
}

func (r *ActionRepo) Get(ctx context.Context, id string) (*Action, error) {
	row := r.c.queryRow(ctx, `SELECT `+actionColumns+` FROM actions a WHERE a.id = ?`, id)
	return scanActionRow(row)
}

// GetForUser returns the action only if it belongs to one of the user's
// mandalarts.
func (r *ActionRepo) GetForUser(ctx context.Context, userID, id string) (*Action, error) {
	row := r.c.queryRow(ctx, `
		SELECT `+actionColumns+`
		FROM actions a
		JOIN sub_goals s ON s.id = a.sub_goal_id
		JOIN mandalarts m ON m.id = s.mandalart_id
		WHERE a.id = ? AND m.user_id = ?
	`, id, userID)
	return scanActionRow(row)
}

func (r *ActionRepo) ListBySubGoal(ctx context.Context, subGoalID string) ([]Action, error) {
	rows, err := r.c.query(ctx, `
		SELECT `+actionColumns+`
		FROM actions a
		WHERE a.sub_goal_id = ?
		ORDER BY a.position ASC
	`, subGoalID)
	if err != nil {
		return nil, fmt.Errorf("action list: %w", err)
	}
	return collectActions(rows)
}

// ListActiveByUser returns every action under the user's active mandalarts,
// ordered by sub-goal then action position.
func (r *ActionRepo) ListActiveByUser(ctx context.Context, userID string) ([]Action, error) {
	rows, err := r.c.query(ctx, `
		SELECT `+actionColumns+`
		FROM actions a
		JOIN sub_goals s ON s.id = a.sub_goal_id
		JOIN mandalarts m ON m.id = s.mandalart_id
		WHERE m.user_id = ? AND m.is_active = 1
		ORDER BY s.position ASC, a.position ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("action list by user: %w", err)
	}
	return collectActions(rows)
}

func (r *ActionRepo) Count(ctx context.Context, subGoalID string) (int, error) {
	row := r.c.queryRow(ctx, `SELECT COUNT(*) FROM actions WHERE sub_goal_id = ?`, subGoalID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("action count: %w", err)
	}
	return n, nil
}

// UpdateSettings overwrites type, all settings columns and the stored suggestion.
func (r *ActionRepo) UpdateSettings(ctx context.Context, a *Action) error {
	weekdays, err := weekdaysJSON(a.RoutineWeekdays)
	if err != nil {
		return err
	}
	_, err = r.c.exec(ctx, `
		UPDATE actions
		SET type = ?,
			routine_frequency = ?, routine_weekdays = ?, routine_count_per_period = ?,
			mission_completion_type = ?, mission_period_cycle = ?,
			mission_current_period_start = ?, mission_current_period_end = ?, mission_status = ?,
			ai_suggestion = ?
		WHERE id = ?
	`, a.Type,
		a.RoutineFrequency, weekdays, a.RoutineCountPerPeriod,
		a.MissionCompletionType, a.MissionPeriodCycle,
		utcPtr(a.MissionPeriodStart), utcPtr(a.MissionPeriodEnd), a.MissionStatus,
		a.AISuggestion, a.ID)
	if err != nil {
		return fmt.Errorf("action update settings: %w", err)
	}
	return nil
}

func (r *ActionRepo) UpdatePeriod(ctx context.Context, id string, start, end time.Time) error {
	_, err := r.c.exec(ctx, `
		UPDATE actions
		SET mission_current_period_start = ?, mission_current_period_end = ?
		WHERE id = ?
	`, start.UTC(), end.UTC(), id)
	if err != nil {
		return fmt.Errorf("action update period: %w", err)
	}
	return nil
}

func (r *ActionRepo) UpdateMissionStatus(ctx context.Context, id, status string) error {
	if _, err := r.c.exec(ctx, `UPDATE actions SET mission_status = ? WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("action update status: %w", err)
	}
	return nil
}

// Delete removes an action and its check history. Call it inside a transaction.
func (r *ActionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.c.exec(ctx, `DELETE FROM check_history WHERE action_id = ?`, id); err != nil {
		return fmt.Errorf("action delete checks: %w", err)
	}
	if _, err := r.c.exec(ctx, `DELETE FROM actions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("action delete: %w", err)
	}
	return nil
}

func weekdaysJSON(days []int) (*string, error) {
	if len(days) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("marshal weekdays: %w", err)
	}
	s := string(data)
	return &s, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func collectActions(rows *sql.Rows) ([]Action, error) {
	defer rows.Close()
	var out []Action
	for rows.Next() {
		a, err := scanActionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("action list rows: %w", err)
	}
	return out, nil
}

func scanActionRow(row scanner) (*Action, error) {
	var (
		a           Action
		frequency   sql.NullString
		weekdaysRaw sql.NullString
		count       sql.NullInt64
		completion  sql.NullString
		cycle       sql.NullString
		start       sql.NullTime
		end         sql.NullTime
		status      sql.NullString
		suggestion  sql.NullString
	)
	if err := row.Scan(
		&a.ID, &a.SubGoalID, &a.Title, &a.Position, &a.Type,
		&frequency, &weekdaysRaw, &count,
		&completion, &cycle, &start, &end, &status,
		&suggestion, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("action scan: %w", err)
	}

	a.RoutineFrequency = nullString(frequency)
	if count.Valid {
		v := int(count.Int64)
		a.RoutineCountPerPeriod = &v
	}
	if weekdaysRaw.Valid && weekdaysRaw.String != "" {
		if err := json.Unmarshal([]byte(weekdaysRaw.String), &a.RoutineWeekdays); err != nil {
			return nil, fmt.Errorf("unmarshal weekdays: %w", err)
		}
	}
	a.MissionCompletionType = nullString(completion)
	a.MissionPeriodCycle = nullString(cycle)
	a.MissionPeriodStart = nullTime(start)
	a.MissionPeriodEnd = nullTime(end)
	a.MissionStatus = nullString(status)
	a.AISuggestion = nullString(suggestion)
	return &a, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
