package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mandaact/internal/storage"
)

const testUser = "user-1"

func newTestService(t *testing.T) (*Service, func()) {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	svc := NewService(store)
	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup
}

// newTestGoal creates a mandalart with one sub-goal and returns the sub-goal id.
func newTestGoal(t *testing.T, svc *Service, now time.Time) string {
	t.Helper()
	ctx := context.Background()
	m, err := svc.CreateMandalart(ctx, testUser, "건강한 삶", now)
	if err != nil {
		t.Fatalf("CreateMandalart: %v", err)
	}
	g, err := svc.AddSubGoal(ctx, m.ID, "체력", now)
	if err != nil {
		t.Fatalf("AddSubGoal: %v", err)
	}
	return g.ID
}

func addAction(t *testing.T, svc *Service, in AddActionInput, now time.Time) *Action {
	t.Helper()
	a, err := svc.AddAction(context.Background(), in, now)
	if err != nil {
		t.Fatalf("AddAction(%q): %v", in.Title, err)
	}
	return a
}

func todayIDs(t *testing.T, svc *Service, now time.Time) map[string]TodayItem {
	t.Helper()
	items, err := svc.TodayActions(context.Background(), testUser, now)
	if err != nil {
		t.Fatalf("TodayActions: %v", err)
	}
	out := make(map[string]TodayItem, len(items))
	for _, it := range items {
		out[it.Action.ID] = it
	}
	return out
}

func TestAddActionUsesSuggestion(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	a := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "  분기 목표 달성 매주 체크 "}, now)
	if a.Type != ActionTypeMission || a.Mission == nil || a.Mission.PeriodCycle != CycleQuarterly {
		t.Fatalf("action = %+v", a)
	}
	if a.Mission.CurrentPeriodEnd == nil || a.Mission.CurrentPeriodEnd.Month() != time.June {
		t.Fatalf("period end = %v, want end of June", a.Mission.CurrentPeriodEnd)
	}

	got, err := svc.GetAction(ctx, testUser, a.ID)
	if err != nil {
		t.Fatalf("GetAction: %v", err)
	}
	if got.Title != "분기 목표 달성 매주 체크" || got.Suggestion == nil || got.Suggestion.Type != ActionTypeMission {
		t.Fatalf("stored action = %+v", got)
	}
	if got.Mission.CurrentPeriodEnd == nil || !got.Mission.CurrentPeriodEnd.Equal(*a.Mission.CurrentPeriodEnd) {
		t.Fatalf("stored period end = %v, want %v", got.Mission.CurrentPeriodEnd, a.Mission.CurrentPeriodEnd)
	}
}

func TestAddActionExplicitTypeKeepsSuggestion(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	a := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "매일 30분 운동하기", Type: ActionTypeReference}, now)
	if a.Type != ActionTypeReference || a.Routine != nil || a.Mission != nil {
		t.Fatalf("action = %+v", a)
	}
	if a.Suggestion == nil || a.Suggestion.Type != ActionTypeRoutine {
		t.Fatalf("suggestion = %+v", a.Suggestion)
	}
}

func TestAddActionValidation(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	var verr ValidationError
	_, err := svc.AddAction(ctx, AddActionInput{SubGoalID: goal, Title: "   "}, now)
	if !errors.As(err, &verr) {
		t.Fatalf("blank title: err = %v, want ValidationError", err)
	}
	_, err = svc.AddAction(ctx, AddActionInput{
		SubGoalID: goal,
		Title:     "run",
		Type:      ActionTypeRoutine,
		Routine:   &RoutineSettings{Frequency: FrequencyWeekly, Weekdays: []int{1, 9}},
	}, now)
	if !errors.As(err, &verr) {
		t.Fatalf("bad weekday: err = %v, want ValidationError", err)
	}
	_, err = svc.AddAction(ctx, AddActionInput{
		SubGoalID: goal,
		Title:     "ship it",
		Type:      ActionTypeMission,
		Mission:   &MissionSettings{CompletionType: CompletionPeriodic},
	}, now)
	if !errors.As(err, &verr) {
		t.Fatalf("periodic without cycle: err = %v, want ValidationError", err)
	}

	var nf NotFoundError
	if _, err := svc.AddAction(ctx, AddActionInput{SubGoalID: "missing", Title: "run"}, now); !errors.As(err, &nf) {
		t.Fatalf("missing sub-goal: err = %v, want NotFoundError", err)
	}

	for i := 0; i < MaxActionsPerGoal; i++ {
		addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)
	}
	if _, err := svc.AddAction(ctx, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now); !errors.As(err, &verr) {
		t.Fatalf("ninth action: err = %v, want ValidationError", err)
	}
}

func TestOnceMissionCheckAndUncheck(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	mission := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "토익 900점 달성"}, now)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)

	if _, ok := todayIDs(t, svc, now)[mission.ID]; !ok {
		t.Fatalf("active mission missing from today")
	}

	res, err := svc.CheckAction(ctx, testUser, mission.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("CheckAction: %v", err)
	}
	if !res.MissionCompleted || res.XP != CheckBaseXP {
		t.Fatalf("check result = %+v", res)
	}
	if _, ok := todayIDs(t, svc, now.Add(2*time.Hour))[mission.ID]; ok {
		t.Fatalf("completed mission still shown today")
	}

	_, err = svc.CheckAction(ctx, testUser, mission.ID, now.Add(3*time.Hour))
	var dup AlreadyCheckedError
	if !errors.As(err, &dup) {
		t.Fatalf("second check: err = %v, want AlreadyCheckedError", err)
	}

	un, err := svc.UncheckAction(ctx, testUser, mission.ID, now.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("UncheckAction: %v", err)
	}
	if un.XPRemoved != CheckBaseXP || un.TotalXP != 0 {
		t.Fatalf("uncheck result = %+v", un)
	}
	item, ok := todayIDs(t, svc, now.Add(5*time.Hour))[mission.ID]
	if !ok || item.CheckedToday {
		t.Fatalf("reopened mission = %+v (present=%v)", item, ok)
	}

	var notChecked NotCheckedError
	if _, err := svc.UncheckAction(ctx, testUser, mission.ID, now.Add(6*time.Hour)); !errors.As(err, &notChecked) {
		t.Fatalf("uncheck twice: err = %v, want NotCheckedError", err)
	}
}

func TestCompletedOnceMissionCannotBeCheckedLater(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	mission := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "토익 900점 달성"}, now)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)

	if _, err := svc.CheckAction(ctx, testUser, mission.ID, now); err != nil {
		t.Fatalf("CheckAction: %v", err)
	}
	before, err := svc.Dashboard(ctx, testUser, now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	next := now.Add(24 * time.Hour)
	_, err = svc.CheckAction(ctx, testUser, mission.ID, next)
	var done MissionCompletedError
	if !errors.As(err, &done) || done.ActionID != mission.ID {
		t.Fatalf("next-day check: err = %v, want MissionCompletedError", err)
	}

	after, err := svc.Dashboard(ctx, testUser, next)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if after.Level.TotalXP != before.Level.TotalXP {
		t.Fatalf("total xp = %d, want %d", after.Level.TotalXP, before.Level.TotalXP)
	}
}

func TestCheckReferenceFails(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)

	ref := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "긍정적인 태도 유지"}, now)
	var nc NotCheckableError
	if _, err := svc.CheckAction(context.Background(), testUser, ref.ID, now); !errors.As(err, &nc) {
		t.Fatalf("err = %v, want NotCheckableError", err)
	}
}

func TestPerfectDayPaidOnce(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0) // Wednesday, no weekend bonus
	goal := newTestGoal(t, svc, now)

	run := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "매일 30분 운동하기"}, now)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "긍정적인 태도 유지"}, now)

	res, err := svc.CheckAction(ctx, testUser, run.ID, now)
	if err != nil {
		t.Fatalf("CheckAction: %v", err)
	}
	if !res.PerfectDay || res.TotalXP != CheckBaseXP+PerfectDayXP {
		t.Fatalf("first check = %+v", res)
	}
	if _, err := svc.UncheckAction(ctx, testUser, run.ID, now.Add(time.Minute)); err != nil {
		t.Fatalf("UncheckAction: %v", err)
	}
	res, err = svc.CheckAction(ctx, testUser, run.ID, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("CheckAction again: %v", err)
	}
	if res.PerfectDay || res.TotalXP != CheckBaseXP+PerfectDayXP {
		t.Fatalf("second check = %+v", res)
	}
}

func TestComebackBonus(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	mon := at(2024, time.May, 13, 9, 0)
	goal := newTestGoal(t, svc, mon)

	run := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "매일 30분 운동하기"}, mon)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, mon)

	if _, err := svc.CheckAction(ctx, testUser, run.ID, mon); err != nil {
		t.Fatalf("CheckAction: %v", err)
	}
	thu := at(2024, time.May, 16, 9, 0)
	res, err := svc.CheckAction(ctx, testUser, run.ID, thu)
	if err != nil {
		t.Fatalf("CheckAction after gap: %v", err)
	}
	if !res.Comeback || res.Multiplier != 1.5 || res.XP != 15 {
		t.Fatalf("comeback check = %+v", res)
	}

	ms, err := svc.ActiveMultipliers(ctx, testUser, thu)
	if err != nil {
		t.Fatalf("ActiveMultipliers: %v", err)
	}
	if len(ms) != 1 || ms[0].Type != BonusComeback || ms[0].DaysRemaining != 3 {
		t.Fatalf("multipliers = %+v", ms)
	}
}

func TestLevelMilestoneActivationIsIdempotent(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)

	ok, err := svc.ActivateLevelMilestoneBonus(ctx, testUser, 4, now)
	if err != nil || ok {
		t.Fatalf("level 4: ok=%v err=%v, want false", ok, err)
	}
	ok, err = svc.ActivateLevelMilestoneBonus(ctx, testUser, 5, now)
	if err != nil || !ok {
		t.Fatalf("level 5: ok=%v err=%v, want true", ok, err)
	}
	ok, err = svc.ActivateLevelMilestoneBonus(ctx, testUser, 5, now.Add(time.Hour))
	if err != nil || ok {
		t.Fatalf("second activation: ok=%v err=%v, want false", ok, err)
	}
	n, err := svc.Store().Bonuses.CountActive(ctx, testUser, string(BonusLevelMilestone), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 1 {
		t.Fatalf("grants = %d, want 1", n)
	}

	// After expiry a new grant may be activated.
	later := now.Add(BonusDuration(BonusLevelMilestone) + time.Minute)
	if ok, err := svc.ActivateLevelMilestoneBonus(ctx, testUser, 10, later); err != nil || !ok {
		t.Fatalf("after expiry: ok=%v err=%v, want true", ok, err)
	}
}

func TestPerfectWeekActivation(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	sun := at(2024, time.May, 12, 9, 0)
	goal := newTestGoal(t, svc, sun)
	run := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "매일 30분 운동하기"}, sun)

	var last *CheckResult
	for d := 0; d < 6; d++ {
		res, err := svc.CheckAction(ctx, testUser, run.ID, sun.AddDate(0, 0, d))
		if err != nil {
			t.Fatalf("day %d: %v", d, err)
		}
		if d < 5 && res.PerfectWeek {
			t.Fatalf("perfect week paid early on day %d", d)
		}
		last = res
	}
	// 6 of 7 days is 86%.
	if !last.PerfectWeek {
		t.Fatalf("perfect week not paid: %+v", last)
	}
	ms, err := svc.ActiveMultipliers(ctx, testUser, sun.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("ActiveMultipliers: %v", err)
	}
	found := false
	for _, m := range ms {
		if m.Type == BonusPerfectWeek {
			found = true
		}
	}
	if !found {
		t.Fatalf("perfect week multiplier missing: %+v", ms)
	}
}

func TestUpdateActionTypeResetsPeriod(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)
	a := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)

	updated, err := svc.UpdateActionType(ctx, testUser, a.ID, ActionSettings{
		Type:    ActionTypeMission,
		Mission: &MissionSettings{CompletionType: CompletionPeriodic, PeriodCycle: CycleMonthly},
	}, now)
	if err != nil {
		t.Fatalf("UpdateActionType: %v", err)
	}
	if updated.Routine != nil || updated.Mission.CurrentPeriodEnd == nil || updated.Mission.CurrentPeriodEnd.Day() != 31 {
		t.Fatalf("updated = %+v", updated)
	}

	got, err := svc.GetAction(ctx, testUser, a.ID)
	if err != nil {
		t.Fatalf("GetAction: %v", err)
	}
	if got.Type != ActionTypeMission || got.Mission.PeriodCycle != CycleMonthly || got.Routine != nil {
		t.Fatalf("stored = %+v", got)
	}

	back, err := svc.UpdateActionType(ctx, testUser, a.ID, ActionSettings{Type: ActionTypeRoutine}, now)
	if err != nil {
		t.Fatalf("UpdateActionType back: %v", err)
	}
	if back.Routine == nil || back.Routine.Frequency != FrequencyDaily || back.Mission != nil {
		t.Fatalf("back to routine = %+v", back)
	}
}

func TestRolloverPeriods(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)
	a := addAction(t, svc, AddActionInput{
		SubGoalID: goal,
		Title:     "주간 보고서",
		Type:      ActionTypeMission,
		Mission:   &MissionSettings{CompletionType: CompletionPeriodic, PeriodCycle: CycleWeekly},
	}, now)

	later := at(2024, time.June, 5, 9, 0)
	n, err := svc.RolloverPeriods(ctx, testUser, later)
	if err != nil {
		t.Fatalf("RolloverPeriods: %v", err)
	}
	if n != 1 {
		t.Fatalf("moved = %d, want 1", n)
	}
	got, err := svc.GetAction(ctx, testUser, a.ID)
	if err != nil {
		t.Fatalf("GetAction: %v", err)
	}
	p := Period{Start: got.Mission.CurrentPeriodStart.In(seoul), End: got.Mission.CurrentPeriodEnd.In(seoul)}
	if !p.Contains(later) {
		t.Fatalf("period %s does not contain %v", FormatPeriod(p), later)
	}
	if n, err := svc.RolloverPeriods(ctx, testUser, later); err != nil || n != 0 {
		t.Fatalf("second rollover: n=%d err=%v", n, err)
	}
}

func TestDeleteActionCascadesChecks(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)
	a := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)
	if _, err := svc.CheckAction(ctx, testUser, a.ID, now); err != nil {
		t.Fatalf("CheckAction: %v", err)
	}
	if err := svc.DeleteAction(ctx, testUser, a.ID); err != nil {
		t.Fatalf("DeleteAction: %v", err)
	}
	checks, err := svc.Store().Checks.ListSince(ctx, testUser, time.Time{})
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(checks) != 0 {
		t.Fatalf("checks left after delete: %d", len(checks))
	}
	var nf NotFoundError
	if err := svc.DeleteAction(ctx, testUser, a.ID); !errors.As(err, &nf) {
		t.Fatalf("delete twice: err = %v, want NotFoundError", err)
	}
}

func TestDashboard(t *testing.T) {
	svc, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()
	now := at(2024, time.May, 15, 9, 0)
	goal := newTestGoal(t, svc, now)
	run := addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "매일 30분 운동하기"}, now)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "책 읽기"}, now)
	addAction(t, svc, AddActionInput{SubGoalID: goal, Title: "긍정적인 태도 유지"}, now)

	if _, err := svc.CheckAction(ctx, testUser, run.ID, now.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("CheckAction yesterday: %v", err)
	}
	if _, err := svc.CheckAction(ctx, testUser, run.ID, now); err != nil {
		t.Fatalf("CheckAction: %v", err)
	}

	d, err := svc.Dashboard(ctx, testUser, now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalActions != 2 {
		t.Fatalf("total actions = %d, want 2 (reference excluded)", d.TotalActions)
	}
	if d.Completion.Today != (PeriodStat{Checked: 1, Total: 2, Percentage: 50}) {
		t.Fatalf("today = %+v", d.Completion.Today)
	}
	if d.Streak.Current != 2 || d.Streak.Longest != 2 {
		t.Fatalf("streak = %+v", d.Streak)
	}
	if len(d.Goals) != 1 || d.Goals[0].CheckedThisWeek != 1 {
		t.Fatalf("goals = %+v", d.Goals)
	}
	if d.Level.TotalXP != 2*CheckBaseXP || d.TotalMultiplier != 1.0 {
		t.Fatalf("level = %+v multiplier = %v", d.Level, d.TotalMultiplier)
	}
	if len(d.Daily) != HeatmapDays {
		t.Fatalf("daily series = %d entries", len(d.Daily))
	}
}
