package engine

import (
	"testing"
	"time"
)

func check(action string, t time.Time) CheckEvent {
	return CheckEvent{ActionID: action, CheckedAt: t}
}

func TestComputeCompletionStats(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0) // Wednesday; week starts Sunday 12th
	events := []CheckEvent{
		check("a", at(2024, time.May, 15, 8, 0)),
		check("a", at(2024, time.May, 15, 9, 0)), // same action, same day
		check("b", at(2024, time.May, 15, 10, 0)),
		check("a", at(2024, time.May, 12, 10, 0)),
		check("a", at(2024, time.May, 11, 10, 0)), // previous week
		check("c", at(2024, time.May, 1, 10, 0)),
		check("c", at(2024, time.April, 30, 10, 0)), // previous month
	}
	got := ComputeCompletionStats(4, events, now)

	if got.Today != (PeriodStat{Checked: 2, Total: 4, Percentage: 50}) {
		t.Fatalf("today = %+v", got.Today)
	}
	if got.Week != (PeriodStat{Checked: 3, Total: 28, Percentage: 11}) {
		t.Fatalf("week = %+v", got.Week)
	}
	if got.Month != (PeriodStat{Checked: 5, Total: 124, Percentage: 4}) {
		t.Fatalf("month = %+v", got.Month)
	}
}

func TestComputeCompletionStatsZeroTotal(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	got := ComputeCompletionStats(0, []CheckEvent{check("a", now)}, now)
	if got.Today.Percentage != 0 || got.Week.Percentage != 0 || got.Month.Percentage != 0 {
		t.Fatalf("zero total should give 0%%: %+v", got)
	}
}

func TestComputeStreak(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	events := []CheckEvent{
		check("a", at(2024, time.May, 15, 7, 0)),
		check("b", at(2024, time.May, 15, 8, 0)),
		check("a", at(2024, time.May, 14, 7, 0)),
		check("a", at(2024, time.May, 13, 7, 0)),
		// gap
		check("a", at(2024, time.May, 9, 7, 0)),
		check("a", at(2024, time.May, 8, 7, 0)),
		check("a", at(2024, time.May, 7, 7, 0)),
		check("a", at(2024, time.May, 6, 7, 0)),
	}
	got := ComputeStreak(events, now)
	if got.Current != 3 || got.Longest != 4 {
		t.Fatalf("streak = %+v, want current 3 longest 4", got)
	}
	if got.LastCheckDate == nil || got.LastCheckDate.Day() != 15 {
		t.Fatalf("last check date = %v", got.LastCheckDate)
	}
}

func TestComputeStreakCountsFromYesterday(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	events := []CheckEvent{
		check("a", at(2024, time.May, 14, 7, 0)),
		check("a", at(2024, time.May, 13, 7, 0)),
	}
	if got := ComputeStreak(events, now); got.Current != 2 {
		t.Fatalf("current = %d, want 2", got.Current)
	}
}

func TestComputeStreakResetsAfterGap(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	// Last active day is the 12th: yesterday minus two.
	events := []CheckEvent{
		check("a", at(2024, time.May, 12, 7, 0)),
		check("a", at(2024, time.May, 11, 7, 0)),
		check("a", at(2024, time.May, 10, 7, 0)),
	}
	got := ComputeStreak(events, now)
	if got.Current != 0 {
		t.Fatalf("current = %d, want 0", got.Current)
	}
	if got.Longest != 3 {
		t.Fatalf("longest = %d, want 3", got.Longest)
	}
}

func TestComputeStreakIgnoresFutureDates(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	events := []CheckEvent{
		check("a", at(2024, time.May, 18, 7, 0)),
	}
	if got := ComputeStreak(events, now); got.Current != 0 {
		t.Fatalf("current = %d, want 0", got.Current)
	}
}

func TestComputeStreakEmpty(t *testing.T) {
	got := ComputeStreak(nil, at(2024, time.May, 15, 20, 0))
	if got.Current != 0 || got.Longest != 0 || got.LastCheckDate != nil {
		t.Fatalf("empty streak = %+v", got)
	}
}

func TestComputeStreakUsesLocalDates(t *testing.T) {
	// 15:30 UTC on the 14th is 00:30 on the 15th in Seoul.
	now := at(2024, time.May, 15, 20, 0)
	events := []CheckEvent{
		check("a", time.Date(2024, time.May, 14, 15, 30, 0, 0, time.UTC)),
		check("a", at(2024, time.May, 14, 7, 0)),
	}
	if got := ComputeStreak(events, now); got.Current != 2 {
		t.Fatalf("current = %d, want 2", got.Current)
	}
}

func TestComputeGoalProgress(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	actions := []Action{
		{ID: "a", SubGoalID: "g1", Type: ActionTypeRoutine},
		{ID: "b", SubGoalID: "g1", Type: ActionTypeMission},
		{ID: "r", SubGoalID: "g1", Type: ActionTypeReference},
		{ID: "x", SubGoalID: "g2", Type: ActionTypeRoutine},
	}
	events := []CheckEvent{
		check("a", at(2024, time.May, 15, 7, 0)),
		check("a", at(2024, time.May, 14, 7, 0)),
		check("b", at(2024, time.May, 13, 7, 0)),
		check("x", at(2024, time.May, 15, 7, 0)),
	}
	got := ComputeGoalProgress("g1", "health", actions, events, now)
	want := GoalProgress{SubGoalID: "g1", Title: "health", TotalActions: 2, CheckedToday: 1, CheckedThisWeek: 2, WeeklyPercentage: 14}
	if got != want {
		t.Fatalf("progress = %+v, want %+v", got, want)
	}
}

func TestDailyCompletion(t *testing.T) {
	now := at(2024, time.May, 15, 20, 0)
	events := []CheckEvent{
		check("a", at(2024, time.May, 15, 7, 0)),
		check("b", at(2024, time.May, 15, 8, 0)),
		check("a", at(2024, time.May, 13, 7, 0)),
	}
	got := DailyCompletion(events, 2, 3, now)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Date.Day() != 13 || got[0].Percentage != 50 {
		t.Fatalf("first day = %+v", got[0])
	}
	if got[1].Checked != 0 || got[2].Percentage != 100 {
		t.Fatalf("series = %+v", got)
	}
}

func TestTimeOfDayPattern(t *testing.T) {
	events := []CheckEvent{
		check("a", at(2024, time.May, 15, 5, 0)),
		check("a", at(2024, time.May, 15, 11, 59)),
		check("a", at(2024, time.May, 15, 12, 0)),
		check("a", at(2024, time.May, 15, 18, 0)),
		check("a", at(2024, time.May, 15, 22, 0)),
		check("a", at(2024, time.May, 15, 3, 0)),
	}
	got := TimeOfDayPattern(events, seoul)
	if got != (TimeOfDay{Morning: 2, Afternoon: 1, Evening: 1, Night: 2}) {
		t.Fatalf("pattern = %+v", got)
	}
}
