package engine

import "time"

// ShouldShowToday decides whether an action belongs on today's checklist.
// Actions with missing settings are shown rather than silently dropped.
func ShouldShowToday(a Action, today time.Time) bool {
	switch a.Type {
	case ActionTypeReference:
		return true
	case ActionTypeRoutine:
		r := a.Routine
		if r == nil {
			return true
		}
		if r.Frequency == FrequencyWeekly && len(r.Weekdays) > 0 {
			wd := int(today.Weekday())
			for _, d := range r.Weekdays {
				if d == wd {
					return true
				}
			}
			return false
		}
		return true
	case ActionTypeMission:
		m := a.Mission
		if m == nil {
			return true
		}
		if m.CompletionType == CompletionOnce {
			return m.Status != MissionCompleted
		}
		if m.CompletionType == CompletionPeriodic && m.CurrentPeriodEnd != nil {
			return !today.After(*m.CurrentPeriodEnd)
		}
		return true
	default:
		return true
	}
}

// FilterToday keeps the actions visible on today, preserving order.
func FilterToday(actions []Action, today time.Time) []Action {
	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		if ShouldShowToday(a, today) {
			out = append(out, a)
		}
	}
	return out
}
