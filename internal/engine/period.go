package engine

import (
	"fmt"
	"time"
)

// Period is a closed window [Start, End]. Start is local midnight and End is
// 23:59:59.999 on the last day of the window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

const endOfDayNanos = 23*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(endOfDayNanos)
}

// dayEnd returns 23:59:59.999 on the given calendar day. Day overflow is
// normalized by time.Date, so day 0 is the last day of the previous month.
func dayEnd(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// InitialPeriod is the period of the given cycle that contains now.
func InitialPeriod(cycle PeriodCycle, now time.Time) Period {
	start := startOfDay(now)
	y, m, d := start.Date()
	loc := start.Location()

	var end time.Time
	switch cycle {
	case CycleWeekly:
		end = dayEnd(y, m, d+6-int(start.Weekday()), loc)
	case CycleMonthly:
		end = dayEnd(y, m+1, 0, loc)
	case CycleQuarterly:
		q := (int(m) - 1) / 3
		end = dayEnd(y, time.Month((q+1)*3+1), 0, loc)
	case CycleYearly:
		end = dayEnd(y, time.December, 31, loc)
	default:
		end = dayEnd(y, m, d, loc)
	}
	return Period{Start: start, End: end}
}

// NextPeriod starts the day after currentEnd and spans one cycle length.
func NextPeriod(currentEnd time.Time, cycle PeriodCycle) Period {
	y, m, d := currentEnd.Date()
	loc := currentEnd.Location()
	start := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	sy, sm, sd := start.Date()
	var end time.Time
	switch cycle {
	case CycleWeekly:
		end = dayEnd(sy, sm, sd+6, loc)
	case CycleMonthly:
		end = dayEnd(sy, sm+1, sd-1, loc)
	case CycleQuarterly:
		end = dayEnd(sy, sm+3, sd-1, loc)
	case CycleYearly:
		end = dayEnd(sy+1, sm, sd-1, loc)
	default:
		end = dayEnd(sy, sm, sd, loc)
	}
	return Period{Start: start, End: end}
}

// RollForward advances p until it contains now. A period that has not lapsed
// is returned unchanged; the bool reports whether anything moved.
func RollForward(p Period, cycle PeriodCycle, now time.Time) (Period, bool) {
	moved := false
	for i := 0; now.After(p.End); i++ {
		if i > 100_000 {
			// Only reachable with a corrupt stored period.
			return InitialPeriod(cycle, now), true
		}
		p = NextPeriod(p.End.In(now.Location()), cycle)
		moved = true
	}
	return p, moved
}

// RoutinePeriodBounds is the progress window of a routine: today for daily,
// Monday through Sunday for weekly, the calendar month for monthly.
func RoutinePeriodBounds(now time.Time, freq RoutineFrequency) Period {
	start := startOfDay(now)
	y, m, d := start.Date()
	loc := start.Location()
	switch freq {
	case FrequencyWeekly:
		offset := (int(start.Weekday()) + 6) % 7
		monday := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		my, mm, md := monday.Date()
		return Period{Start: monday, End: dayEnd(my, mm, md+6, loc)}
	case FrequencyMonthly:
		return Period{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: dayEnd(y, m+1, 0, loc)}
	default:
		return Period{Start: start, End: endOfDay(start)}
	}
}

// PeriodTarget is the number of checks a routine expects per period.
func PeriodTarget(a Action) int {
	if a.Type != ActionTypeRoutine || a.Routine == nil {
		return 1
	}
	r := a.Routine
	switch r.Frequency {
	case FrequencyWeekly:
		if len(r.Weekdays) > 0 {
			return len(r.Weekdays)
		}
		if r.CountPerPeriod > 0 {
			return r.CountPerPeriod
		}
		return 1
	case FrequencyMonthly:
		if r.CountPerPeriod > 0 {
			return r.CountPerPeriod
		}
		return 1
	default:
		return 1
	}
}

// IsConfigured reports whether an action carries the settings its type needs.
func IsConfigured(a Action) bool {
	switch a.Type {
	case ActionTypeReference:
		return true
	case ActionTypeRoutine:
		if a.Routine == nil {
			return false
		}
		if a.Routine.Frequency == FrequencyWeekly {
			return len(a.Routine.Weekdays) > 0 || a.Routine.CountPerPeriod > 0
		}
		return a.Routine.Frequency != ""
	case ActionTypeMission:
		if a.Mission == nil {
			return false
		}
		if a.Mission.CompletionType == CompletionPeriodic {
			return a.Mission.PeriodCycle.IsValid()
		}
		return a.Mission.CompletionType == CompletionOnce
	default:
		return false
	}
}

// FormatPeriod renders a period as "2024-01-01 ~ 2024-03-31".
func FormatPeriod(p Period) string {
	return fmt.Sprintf("%s ~ %s", p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}
