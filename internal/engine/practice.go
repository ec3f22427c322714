package engine

import (
	"context"
	"time"

	"mandaact/internal/storage"
)

// TodayItem is one line of today's checklist.
type TodayItem struct {
	Action       Action  `json:"action"`
	SubGoalTitle string  `json:"sub_goal_title"`
	CheckedToday bool    `json:"checked_today"`
	Period       *Period `json:"period,omitempty"`
	PeriodCount  int     `json:"period_count"`
	PeriodTarget int     `json:"period_target"`
}

// progressWindow is the window whose checks count toward the item's target.
func progressWindow(a Action, now time.Time) *Period {
	switch {
	case a.Type == ActionTypeRoutine && a.Routine != nil:
		p := RoutinePeriodBounds(now, a.Routine.Frequency)
		return &p
	case a.Type == ActionTypeMission && a.Mission != nil &&
		a.Mission.CompletionType == CompletionPeriodic &&
		a.Mission.CurrentPeriodStart != nil && a.Mission.CurrentPeriodEnd != nil:
		loc := now.Location()
		return &Period{Start: a.Mission.CurrentPeriodStart.In(loc), End: a.Mission.CurrentPeriodEnd.In(loc)}
	default:
		return nil
	}
}

// RolloverPeriods advances every periodic mission whose window has lapsed so
// that it contains now. It returns the number of missions moved.
func (s *Service) RolloverPeriods(ctx context.Context, userID string, now time.Time) (int, error) {
	moved := 0
	err := s.store.InTx(ctx, func(r storage.Repos) error {
		rows, err := r.Actions.ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			a, err := actionFromRow(row)
			if err != nil {
				return err
			}
			m := a.Mission
			if a.Type != ActionTypeMission || m == nil || m.CompletionType != CompletionPeriodic || !m.PeriodCycle.IsValid() {
				continue
			}
			var next Period
			var changed bool
			if m.CurrentPeriodStart == nil || m.CurrentPeriodEnd == nil {
				next, changed = InitialPeriod(m.PeriodCycle, now), true
			} else {
				cur := Period{Start: m.CurrentPeriodStart.In(now.Location()), End: m.CurrentPeriodEnd.In(now.Location())}
				next, changed = RollForward(cur, m.PeriodCycle, now)
			}
			if !changed {
				continue
			}
			if err := r.Actions.UpdatePeriod(ctx, a.ID, next.Start, next.End); err != nil {
				return err
			}
			s.log.Printf("period rolled action=%s cycle=%s period=%s", a.ID, m.PeriodCycle, FormatPeriod(next))
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// TodayActions rolls lapsed periods forward and returns the actions visible
// today with their check state and period progress.
func (s *Service) TodayActions(ctx context.Context, userID string, now time.Time) ([]TodayItem, error) {
	if _, err := s.RolloverPeriods(ctx, userID, now); err != nil {
		return nil, err
	}
	m, err := s.store.Mandalarts.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	goals, err := s.store.SubGoals.ListByMandalart(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(goals))
	for _, g := range goals {
		titles[g.ID] = g.Title
	}
	actions, err := s.ListActions(ctx, userID)
	if err != nil {
		return nil, err
	}
	visible := FilterToday(actions, now)

	since := startOfDay(now)
	for _, a := range visible {
		if w := progressWindow(a, now); w != nil && w.Start.Before(since) {
			since = w.Start
		}
	}
	rows, err := s.store.Checks.ListSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	events := checksFromRows(rows)

	today := dayKey(now)
	items := make([]TodayItem, 0, len(visible))
	for _, a := range visible {
		item := TodayItem{Action: a, SubGoalTitle: titles[a.SubGoalID], PeriodTarget: PeriodTarget(a)}
		w := progressWindow(a, now)
		item.Period = w
		days := make(map[int64]bool)
		for _, e := range events {
			if e.ActionID != a.ID {
				continue
			}
			t := e.CheckedAt.In(now.Location())
			k := dayKey(t)
			if k == today {
				item.CheckedToday = true
			}
			if w != nil && w.Contains(t) {
				days[k] = true
			}
		}
		item.PeriodCount = len(days)
		items = append(items, item)
	}
	return items, nil
}

// CheckResult describes everything a single check changed.
type CheckResult struct {
	Check            CheckEvent   `json:"check"`
	XP               int          `json:"xp"`
	Multiplier       float64      `json:"multiplier"`
	Multipliers      []Multiplier `json:"multipliers"`
	Streak           int          `json:"streak"`
	Comeback         bool         `json:"comeback"`
	MissionCompleted bool         `json:"mission_completed"`
	PerfectDay       bool         `json:"perfect_day"`
	PerfectWeek      bool         `json:"perfect_week"`
	BonusXP          int          `json:"bonus_xp"`
	LevelBefore      int          `json:"level_before"`
	LevelAfter       int          `json:"level_after"`
	MilestoneBonus   bool         `json:"milestone_bonus"`
	TotalXP          int          `json:"total_xp"`
}

func (r CheckResult) LeveledUp() bool { return r.LevelAfter > r.LevelBefore }

// CheckAction records a check of a checkable action for today and pays XP.
// The user's level row is locked for the whole transaction, which serializes
// grant activation and XP updates per user.
func (s *Service) CheckAction(ctx context.Context, userID, actionID string, now time.Time) (*CheckResult, error) {
	res := &CheckResult{}
	err := s.store.InTx(ctx, func(r storage.Repos) error {
		lvl, err := r.Levels.Lock(ctx, userID)
		if err != nil {
			return err
		}
		row, err := r.Actions.GetForUser(ctx, userID, actionID)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError{Kind: "action", ID: actionID}
		}
		a, err := actionFromRow(*row)
		if err != nil {
			return err
		}
		if !a.Checkable() {
			return NotCheckableError{ActionID: actionID}
		}
		dup, err := r.Checks.FindInRange(ctx, userID, actionID, startOfDay(now), endOfDay(now))
		if err != nil {
			return err
		}
		if dup != nil {
			return AlreadyCheckedError{ActionID: actionID, Day: dayLabel(now)}
		}
		if a.Mission != nil && a.Mission.CompletionType == CompletionOnce && a.Mission.Status == MissionCompleted {
			return MissionCompletedError{ActionID: actionID}
		}

		last, err := r.Checks.Last(ctx, userID)
		if err != nil {
			return err
		}
		if last != nil && IsComeback(&last.CheckedAt, now) {
			ok, err := s.activateGrant(ctx, r, userID, BonusComeback, now)
			if err != nil {
				return err
			}
			res.Comeback = ok
		}

		// Snapshot before the mission status changes so a just-completed
		// mission still counts toward today's perfect day.
		actionRows, err := r.Actions.ListActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		actions, err := actionsFromRows(actionRows)
		if err != nil {
			return err
		}

		history, err := r.Checks.ListSince(ctx, userID, time.Time{})
		if err != nil {
			return err
		}
		events := append(checksFromRows(history), CheckEvent{UserID: userID, ActionID: actionID, CheckedAt: now})
		streak := ComputeStreak(events, now)
		res.Streak = streak.Current

		grantRows, err := r.Bonuses.ListActive(ctx, userID, now)
		if err != nil {
			return err
		}
		res.Multipliers = ActiveMultipliers(grantsFromRows(grantRows), now)
		res.Multiplier = TotalMultiplier(res.Multipliers)
		res.XP = CheckXP(streak.Current, res.Multiplier)

		ch := &storage.Check{UserID: userID, ActionID: actionID, CheckedAt: now, XPAwarded: res.XP}
		if err := r.Checks.Insert(ctx, ch); err != nil {
			return err
		}
		res.Check = CheckEvent{ID: ch.ID, UserID: userID, ActionID: actionID, CheckedAt: now, XPAwarded: res.XP}
		events[len(events)-1] = res.Check

		if a.Type == ActionTypeMission && a.Mission != nil && a.Mission.CompletionType == CompletionOnce {
			if err := r.Actions.UpdateMissionStatus(ctx, actionID, string(MissionCompleted)); err != nil {
				return err
			}
			res.MissionCompleted = true
		}

		if err := s.payPerfectBonuses(ctx, r, userID, actions, events, now, res); err != nil {
			return err
		}

		res.LevelBefore = LevelForTotalXP(lvl.TotalXP)
		lvl.TotalXP += res.XP + res.BonusXP
		lvl.Level = LevelForTotalXP(lvl.TotalXP)
		res.LevelAfter = lvl.Level
		res.TotalXP = lvl.TotalXP
		if err := r.Levels.Update(ctx, lvl); err != nil {
			return err
		}
		if res.LeveledUp() {
			s.log.Printf("level up user=%s level=%d total_xp=%d", userID, lvl.Level, lvl.TotalXP)
			for l := res.LevelBefore + 1; l <= res.LevelAfter; l++ {
				if !IsMilestoneLevel(l) {
					continue
				}
				ok, err := s.activateGrant(ctx, r, userID, BonusLevelMilestone, now)
				if err != nil {
					return err
				}
				res.MilestoneBonus = res.MilestoneBonus || ok
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// payPerfectBonuses pays the perfect-day and perfect-week XP at most once per
// day and week respectively.
func (s *Service) payPerfectBonuses(ctx context.Context, r storage.Repos, userID string, actions []Action, events []CheckEvent, now time.Time, res *CheckResult) error {
	visible := FilterToday(actions, now)
	today := dayKey(now)
	checkedToday := make(map[string]bool)
	for _, e := range events {
		if dayKey(e.CheckedAt.In(now.Location())) == today {
			checkedToday[e.ActionID] = true
		}
	}
	target, done := 0, 0
	for _, a := range visible {
		if !a.Checkable() {
			continue
		}
		target++
		if checkedToday[a.ID] {
			done++
		}
	}
	if target > 0 && done == target {
		ok, err := r.Awards.Insert(ctx, &storage.XPAward{
			UserID: userID, Kind: "perfect_day", AwardedOn: dayLabel(now), XP: PerfectDayXP, CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if ok {
			res.PerfectDay = true
			res.BonusXP += PerfectDayXP
			s.log.Printf("perfect day user=%s day=%s", userID, dayLabel(now))
		}
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
	week := ComputeCompletionStats(len(ids), counted, now).Week
	if week.Total > 0 && week.Percentage >= PerfectWeekThreshold {
		ok, err := r.Awards.Insert(ctx, &storage.XPAward{
			UserID: userID, Kind: "perfect_week", AwardedOn: dayLabel(WeekStart(now)), XP: PerfectWeekXP, CreatedAt: now,
		})
		if err != nil {
			return err
		}
		if ok {
			res.PerfectWeek = true
			res.BonusXP += PerfectWeekXP
			if _, err := s.activateGrant(ctx, r, userID, BonusPerfectWeek, now); err != nil {
				return err
			}
		}
	}
	return nil
}

type UncheckResult struct {
	XPRemoved int `json:"xp_removed"`
	TotalXP   int `json:"total_xp"`
	Level     int `json:"level"`
}

// UncheckAction deletes today's check of the action, takes back the XP it
// paid and reopens a completed once-mission. One-shot bonuses stay paid.
func (s *Service) UncheckAction(ctx context.Context, userID, actionID string, now time.Time) (*UncheckResult, error) {
	res := &UncheckResult{}
	err := s.store.InTx(ctx, func(r storage.Repos) error {
		lvl, err := r.Levels.Lock(ctx, userID)
		if err != nil {
			return err
		}
		row, err := r.Actions.GetForUser(ctx, userID, actionID)
		if err != nil {
			return err
		}
		if row == nil {
			return NotFoundError{Kind: "action", ID: actionID}
		}
		ch, err := r.Checks.FindInRange(ctx, userID, actionID, startOfDay(now), endOfDay(now))
		if err != nil {
			return err
		}
		if ch == nil {
			return NotCheckedError{ActionID: actionID, Day: dayLabel(now)}
		}
		if err := r.Checks.Delete(ctx, ch.ID); err != nil {
			return err
		}
		a, err := actionFromRow(*row)
		if err != nil {
			return err
		}
		if a.Type == ActionTypeMission && a.Mission != nil && a.Mission.CompletionType == CompletionOnce {
			if err := r.Actions.UpdateMissionStatus(ctx, actionID, string(MissionActive)); err != nil {
				return err
			}
		}
		lvl.TotalXP -= ch.XPAwarded
		if lvl.TotalXP < 0 {
			lvl.TotalXP = 0
		}
		lvl.Level = LevelForTotalXP(lvl.TotalXP)
		if err := r.Levels.Update(ctx, lvl); err != nil {
			return err
		}
		res.XPRemoved = ch.XPAwarded
		res.TotalXP = lvl.TotalXP
		res.Level = lvl.Level
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
