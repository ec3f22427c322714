package engine

import (
	"context"
	"time"
)

// HeatmapDays is the length of the dashboard's daily completion series.
const HeatmapDays = 28

type Dashboard struct {
	Mandalart       string          `json:"mandalart"`
	TotalActions    int             `json:"total_actions"`
	Completion      CompletionStats `json:"completion"`
	Streak          StreakStats     `json:"streak"`
	Goals           []GoalProgress  `json:"goals"`
	Level           LevelProgress   `json:"level"`
	Multipliers     []Multiplier    `json:"multipliers"`
	TotalMultiplier float64         `json:"total_multiplier"`
	Daily           []DayCompletion `json:"daily"`
	TimeOfDay       TimeOfDay       `json:"time_of_day"`
}

// Dashboard gathers the statistics shown on the status screen. Reference
// actions never count toward totals.
func (s *Service) Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	d := &Dashboard{}

	lvl, err := s.store.Levels.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	d.Level = ProgressForXP(lvl.TotalXP)

	d.Multipliers, err = s.ActiveMultipliers(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	d.TotalMultiplier = TotalMultiplier(d.Multipliers)

	rows, err := s.store.Checks.ListSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	events := checksFromRows(rows)
	d.Streak = ComputeStreak(events, now)
	d.TimeOfDay = TimeOfDayPattern(events, now.Location())

	m, err := s.store.Mandalarts.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		d.Completion = ComputeCompletionStats(0, nil, now)
		return d, nil
	}
	d.Mandalart = m.Title

	actions, err := s.ListActions(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, a := range actions {
		if a.Checkable() {
			ids[a.ID] = true
		}
	}
	var counted []CheckEvent
	for _, e := range events {
		if ids[e.ActionID] {
			counted = append(counted, e)
		}
	}
	d.TotalActions = len(ids)
	d.Completion = ComputeCompletionStats(d.TotalActions, counted, now)
	d.Daily = DailyCompletion(counted, d.TotalActions, HeatmapDays, now)

	goals, err := s.store.SubGoals.ListByMandalart(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	for _, g := range goals {
		d.Goals = append(d.Goals, ComputeGoalProgress(g.ID, g.Title, actions, counted, now))
	}
	return d, nil
}
