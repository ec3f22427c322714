package engine

import (
	"math"
	"sort"
	"time"
)

// CheckEvent records one check of an action.
type CheckEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ActionID  string    `json:"action_id"`
	CheckedAt time.Time `json:"checked_at"`
	XPAwarded int       `json:"xp_awarded"`
}

type PeriodStat struct {
	Checked    int `json:"checked"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type CompletionStats struct {
	Today PeriodStat `json:"today"`
	Week  PeriodStat `json:"week"`
	Month PeriodStat `json:"month"`
}

type StreakStats struct {
	Current       int        `json:"current"`
	Longest       int        `json:"longest"`
	LastCheckDate *time.Time `json:"last_check_date,omitempty"`
}

type GoalProgress struct {
	SubGoalID        string `json:"sub_goal_id"`
	Title            string `json:"title"`
	TotalActions     int    `json:"total_actions"`
	CheckedToday     int    `json:"checked_today"`
	CheckedThisWeek  int    `json:"checked_this_week"`
	WeeklyPercentage int    `json:"weekly_percentage"`
}

type DayCompletion struct {
	Date       time.Time `json:"date"`
	Checked    int       `json:"checked"`
	Percentage int       `json:"percentage"`
}

type TimeOfDay struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Evening   int `json:"evening"`
	Night     int `json:"night"`
}

func percentage(checked, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(checked) / float64(total) * 100))
}

func periodStat(checked, total int) PeriodStat {
	return PeriodStat{Checked: checked, Total: total, Percentage: percentage(checked, total)}
}

// dayKey identifies a calendar date independent of zone offset.
func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// WeekStart is Sunday 00:00 of the week containing now.
func WeekStart(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
}

func monthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

func daysInMonth(now time.Time) int {
	y, m, _ := now.Date()
	return time.Date(y, m+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

type actionDay struct {
	action string
	day    int64
}

// distinctSince counts distinct (action, day) pairs checked at or after since.
func distinctSince(events []CheckEvent, since time.Time) int {
	seen := make(map[actionDay]struct{})
	loc := since.Location()
	for _, e := range events {
		t := e.CheckedAt.In(loc)
		if t.Before(since) {
			continue
		}
		seen[actionDay{e.ActionID, dayKey(t)}] = struct{}{}
	}
	return len(seen)
}

// ComputeCompletionStats summarizes today, this week (from Sunday) and this
// month. An action checked several times on one day counts once.
func ComputeCompletionStats(totalActions int, events []CheckEvent, now time.Time) CompletionStats {
	if totalActions < 0 {
		totalActions = 0
	}
	return CompletionStats{
		Today: periodStat(distinctSince(events, startOfDay(now)), totalActions),
		Week:  periodStat(distinctSince(events, WeekStart(now)), totalActions*7),
		Month: periodStat(distinctSince(events, monthStart(now)), totalActions*daysInMonth(now)),
	}
}

// ComputeStreak derives current and longest runs of consecutive active days.
// The current streak only counts when the last active day is today or
// yesterday.
func ComputeStreak(events []CheckEvent, now time.Time) StreakStats {
	if len(events) == 0 {
		return StreakStats{}
	}
	loc := now.Location()
	set := make(map[int64]time.Time)
	for _, e := range events {
		t := e.CheckedAt.In(loc)
		k := dayKey(t)
		if _, ok := set[k]; !ok {
			set[k] = startOfDay(t)
		}
	}
	days := make([]int64, 0, len(set))
	for k := range set {
		days = append(days, k)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	last := set[days[0]]
	stats := StreakStats{LastCheckDate: &last}

	run, longest := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	stats.Longest = longest

	today := dayKey(now)
	if d := today - days[0]; d == 0 || d == 1 {
		current := 1
		for i := 1; i < len(days) && days[i-1]-days[i] == 1; i++ {
			current++
		}
		stats.Current = current
	}
	return stats
}

// ComputeGoalProgress reports how many of a sub-goal's checkable actions were
// practiced today and this week.
func ComputeGoalProgress(subGoalID, title string, actions []Action, events []CheckEvent, now time.Time) GoalProgress {
	ids := make(map[string]bool)
	for _, a := range actions {
		if a.SubGoalID == subGoalID && a.Checkable() {
			ids[a.ID] = true
		}
	}
	today := startOfDay(now)
	week := WeekStart(now)
	todaySet := make(map[string]bool)
	weekSet := make(map[string]bool)
	for _, e := range events {
		if !ids[e.ActionID] {
			continue
		}
		t := e.CheckedAt.In(now.Location())
		if !t.Before(week) {
			weekSet[e.ActionID] = true
		}
		if !t.Before(today) {
			todaySet[e.ActionID] = true
		}
	}
	return GoalProgress{
		SubGoalID:        subGoalID,
		Title:            title,
		TotalActions:     len(ids),
		CheckedToday:     len(todaySet),
		CheckedThisWeek:  len(weekSet),
		WeeklyPercentage: percentage(len(weekSet), len(ids)*7),
	}
}

// DailyCompletion returns one entry per day for the last `days` days, oldest
// first, ending today.
func DailyCompletion(events []CheckEvent, totalActions, days int, now time.Time) []DayCompletion {
	if days <= 0 {
		return nil
	}
	loc := now.Location()
	perDay := make(map[int64]map[string]struct{})
	for _, e := range events {
		k := dayKey(e.CheckedAt.In(loc))
		if perDay[k] == nil {
			perDay[k] = make(map[string]struct{})
		}
		perDay[k][e.ActionID] = struct{}{}
	}
	y, m, d := now.Date()
	out := make([]DayCompletion, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Date(y, m, d-i, 0, 0, 0, 0, loc)
		n := len(perDay[dayKey(day)])
		out = append(out, DayCompletion{Date: day, Checked: n, Percentage: percentage(n, totalActions)})
	}
	return out
}

// TimeOfDayPattern buckets checks by local hour: morning 5-12, afternoon
// 12-18, evening 18-22, night otherwise.
func TimeOfDayPattern(events []CheckEvent, loc *time.Location) TimeOfDay {
	var p TimeOfDay
	for _, e := range events {
		h := e.CheckedAt.In(loc).Hour()
		switch {
		case h >= 5 && h < 12:
			p.Morning++
		case h >= 12 && h < 18:
			p.Afternoon++
		case h >= 18 && h < 22:
			p.Evening++
		default:
			p.Night++
		}
	}
	return p
}
