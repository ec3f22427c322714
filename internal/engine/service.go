package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"mandaact/internal/storage"
)

// Logger receives one line per notable event (grants, level ups, rollovers).
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

type Service struct {
	store    *storage.Store
	validate *validator.Validate
	log      Logger
}

func NewService(store *storage.Store) *Service {
	return &Service{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      nopLogger{},
	}
}

// WithLogger sets the event logger. A nil logger disables logging.
func (s *Service) WithLogger(l Logger) *Service {
	if l == nil {
		s.log = nopLogger{}
	} else {
		s.log = l
	}
	return s
}

func (s *Service) Store() *storage.Store { return s.store }

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ValidationError{Field: "title", Reason: "title is required"}
	}
	return t, nil
}

func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return ValidationError{Field: fe.Namespace(), Reason: reason}
	}
	return ValidationError{Reason: err.Error()}
}

func dayLabel(t time.Time) string {
	return t.Format(time.DateOnly)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func actionFromRow(row storage.Action) (Action, error) {
	a := Action{
		ID:        row.ID,
		SubGoalID: row.SubGoalID,
		Title:     row.Title,
		Position:  row.Position,
		Type:      ActionType(row.Type),
		CreatedAt: row.CreatedAt,
	}
	switch a.Type {
	case ActionTypeRoutine:
		r := &RoutineSettings{
			Frequency: RoutineFrequency(deref(row.RoutineFrequency)),
			Weekdays:  row.RoutineWeekdays,
		}
		if row.RoutineCountPerPeriod != nil {
			r.CountPerPeriod = *row.RoutineCountPerPeriod
		}
		a.Routine = r
	case ActionTypeMission:
		a.Mission = &MissionSettings{
			CompletionType:     CompletionType(deref(row.MissionCompletionType)),
			PeriodCycle:        PeriodCycle(deref(row.MissionPeriodCycle)),
			CurrentPeriodStart: row.MissionPeriodStart,
			CurrentPeriodEnd:   row.MissionPeriodEnd,
			Status:             MissionStatus(deref(row.MissionStatus)),
		}
	}
	if row.AISuggestion != nil && *row.AISuggestion != "" {
		var sug Suggestion
		if err := json.Unmarshal([]byte(*row.AISuggestion), &sug); err != nil {
			return Action{}, fmt.Errorf("decode suggestion for %s: %w", row.ID, err)
		}
		a.Suggestion = &sug
	}
	return a, nil
}

func actionToRow(a Action) (storage.Action, error) {
	row := storage.Action{
		ID:        a.ID,
		SubGoalID: a.SubGoalID,
		Title:     a.Title,
		Position:  a.Position,
		Type:      string(a.Type),
		CreatedAt: a.CreatedAt,
	}
	if r := a.Routine; r != nil {
		row.RoutineFrequency = strPtr(string(r.Frequency))
		row.RoutineWeekdays = r.Weekdays
		if r.CountPerPeriod > 0 {
			n := r.CountPerPeriod
			row.RoutineCountPerPeriod = &n
		}
	}
	if m := a.Mission; m != nil {
		row.MissionCompletionType = strPtr(string(m.CompletionType))
		row.MissionPeriodCycle = strPtr(string(m.PeriodCycle))
		row.MissionPeriodStart = m.CurrentPeriodStart
		row.MissionPeriodEnd = m.CurrentPeriodEnd
		row.MissionStatus = strPtr(string(m.Status))
	}
	if a.Suggestion != nil {
		data, err := json.Marshal(a.Suggestion)
		if err != nil {
			return storage.Action{}, fmt.Errorf("encode suggestion: %w", err)
		}
		row.AISuggestion = strPtr(string(data))
	}
	return row, nil
}

func actionsFromRows(rows []storage.Action) ([]Action, error) {
	out := make([]Action, 0, len(rows))
	for _, row := range rows {
		a, err := actionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func checksFromRows(rows []storage.Check) []CheckEvent {
	out := make([]CheckEvent, 0, len(rows))
	for _, c := range rows {
		out = append(out, CheckEvent{
			ID:        c.ID,
			UserID:    c.UserID,
			ActionID:  c.ActionID,
			CheckedAt: c.CheckedAt,
			XPAwarded: c.XPAwarded,
		})
	}
	return out
}

func grantsFromRows(rows []storage.BonusGrant) []Grant {
	out := make([]Grant, 0, len(rows))
	for _, g := range rows {
		out = append(out, Grant{
			ID:          g.ID,
			UserID:      g.UserID,
			Type:        BonusType(g.BonusType),
			Multiplier:  g.Multiplier,
			ActivatedAt: g.ActivatedAt,
			ExpiresAt:   g.ExpiresAt,
		})
	}
	return out
}

func checkableCount(actions []Action) int {
	n := 0
	for _, a := range actions {
		if a.Checkable() {
			n++
		}
	}
	return n
}
