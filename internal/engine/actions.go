package engine

import (
	"context"
	"fmt"
	"time"

	"mandaact/internal/storage"
)

// AddActionInput is a new action draft. An empty Type means "use the
// classifier's suggestion".
type AddActionInput struct {
	SubGoalID string     `validate:"required"`
	Title     string     `validate:"required,max=200"`
	Type      ActionType `validate:"omitempty,oneof=routine mission reference"`
	Routine   *RoutineSettings
	Mission   *MissionSettings
}

// ActionSettings is the type editor's payload.
type ActionSettings struct {
	Type    ActionType `validate:"required,oneof=routine mission reference"`
	Routine *RoutineSettings
	Mission *MissionSettings
}

// settingsFor fills in the settings group for t, preferring explicit values,
// then the suggestion when it agrees on the type, then plain defaults.
func settingsFor(t ActionType, routine *RoutineSettings, mission *MissionSettings, sug Suggestion) (*RoutineSettings, *MissionSettings) {
	switch t {
	case ActionTypeRoutine:
		if routine != nil {
			return routine, nil
		}
		if sug.Type == ActionTypeRoutine {
			r, _ := sug.Apply()
			return r, nil
		}
		return &RoutineSettings{Frequency: FrequencyDaily}, nil
	case ActionTypeMission:
		if mission != nil {
			return nil, mission
		}
		if sug.Type == ActionTypeMission {
			_, m := sug.Apply()
			return nil, m
		}
		return nil, &MissionSettings{CompletionType: CompletionOnce, Status: MissionActive}
	default:
		return nil, nil
	}
}

// preparePeriod sets the mission's period and status for a freshly typed
// action. A periodic mission keeps its window when the cycle is unchanged.
func preparePeriod(m *MissionSettings, prev *MissionSettings, now time.Time) {
	if m == nil {
		return
	}
	switch m.CompletionType {
	case CompletionPeriodic:
		m.Status = ""
		if prev != nil && prev.CompletionType == CompletionPeriodic && prev.PeriodCycle == m.PeriodCycle &&
			prev.CurrentPeriodStart != nil && prev.CurrentPeriodEnd != nil {
			m.CurrentPeriodStart, m.CurrentPeriodEnd = prev.CurrentPeriodStart, prev.CurrentPeriodEnd
			return
		}
		p := InitialPeriod(m.PeriodCycle, now)
		m.CurrentPeriodStart, m.CurrentPeriodEnd = &p.Start, &p.End
	default:
		m.PeriodCycle = ""
		m.CurrentPeriodStart, m.CurrentPeriodEnd = nil, nil
		if m.Status == "" {
			m.Status = MissionActive
			if prev != nil && prev.CompletionType == CompletionOnce && prev.Status != "" {
				m.Status = prev.Status
			}
		}
	}
}

// AddAction validates and stores a new action. The classifier always runs so
// its suggestion is kept for display even when the caller chose the type.
func (s *Service) AddAction(ctx context.Context, in AddActionInput, now time.Time) (*Action, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	in.Title = title
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}

	sug := Suggest(title)
	typ := in.Type
	if typ == "" {
		typ = sug.Type
	}
	routine, mission := settingsFor(typ, in.Routine, in.Mission, sug)
	preparePeriod(mission, nil, now)

	a := Action{
		SubGoalID:  in.SubGoalID,
		Title:      title,
		Type:       typ,
		Routine:    routine,
		Mission:    mission,
		Suggestion: &sug,
		CreatedAt:  now,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err = s.store.InTx(ctx, func(r storage.Repos) error {
		g, err := r.SubGoals.Get(ctx, in.SubGoalID)
		if err != nil {
			return err
		}
		if g == nil {
			return NotFoundError{Kind: "sub-goal", ID: in.SubGoalID}
		}
		n, err := r.Actions.Count(ctx, in.SubGoalID)
		if err != nil {
			return err
		}
		if n >= MaxActionsPerGoal {
			return ValidationError{Field: "action", Reason: fmt.Sprintf("a sub-goal holds at most %d actions", MaxActionsPerGoal)}
		}
		a.Position = n + 1
		row, err := actionToRow(a)
		if err != nil {
			return err
		}
		if err := r.Actions.Insert(ctx, &row); err != nil {
			return err
		}
		a.ID = row.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("action added id=%s type=%s suggested=%s/%s", a.ID, a.Type, sug.Type, sug.Confidence)
	return &a, nil
}

func (s *Service) GetAction(ctx context.Context, userID, id string) (*Action, error) {
	row, err := s.store.Actions.GetForUser(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, NotFoundError{Kind: "action", ID: id}
	}
	a, err := actionFromRow(*row)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActions returns every action of the user's active mandalart.
func (s *Service) ListActions(ctx context.Context, userID string) ([]Action, error) {
	rows, err := s.store.Actions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return actionsFromRows(rows)
}

// UpdateActionType applies a type editor change. Switching to a different
// period cycle starts a fresh period containing now.
func (s *Service) UpdateActionType(ctx context.Context, userID, id string, in ActionSettings, now time.Time) (*Action, error) {
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	var out Action
	err := s.store.InTx(ctx, func(r storage.Repos) error {
		row, err := r.Actions.GetForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError{Kind: "action", ID: id}
		}
		a, err := actionFromRow(*row)
		if err != nil {
			return err
		}
		sug := Suggest(a.Title)
		if a.Suggestion != nil {
			sug = *a.Suggestion
		}
		prev := a.Mission
		a.Type = in.Type
		a.Routine, a.Mission = settingsFor(in.Type, in.Routine, in.Mission, sug)
		preparePeriod(a.Mission, prev, now)
		if err := a.Validate(); err != nil {
			return err
		}
		updated, err := actionToRow(a)
		if err != nil {
			return err
		}
		if err := r.Actions.UpdateSettings(ctx, &updated); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAction removes the action together with its check history.
func (s *Service) DeleteAction(ctx context.Context, userID, id string) error {
	return s.store.InTx(ctx, func(r storage.Repos) error {
		row, err := r.Actions.GetForUser(ctx, userID, id)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError{Kind: "action", ID: id}
		}
		return r.Actions.Delete(ctx, id)
	})
}
