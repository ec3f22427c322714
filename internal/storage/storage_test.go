package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE x = ? AND y = ?`
	if got := DialectSQLite.Rebind(q); got != q {
		t.Fatalf("sqlite rebind changed query: %s", got)
	}
	if got := DialectPostgres.Rebind(q); got != `SELECT a FROM t WHERE x = $1 AND y = $2` {
		t.Fatalf("postgres rebind = %s", got)
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	store := openTestStore(t)
	if err := Migrate(context.Background(), store.DB(), store.Dialect()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestActionRoundTripAndCascade(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	m := &Mandalart{UserID: "u", Title: "goal", IsActive: true, CreatedAt: now}
	if err := store.Mandalarts.Insert(ctx, m); err != nil {
		t.Fatalf("insert mandalart: %v", err)
	}
	g := &SubGoal{MandalartID: m.ID, Title: "sub", Position: 1, CreatedAt: now}
	if err := store.SubGoals.Insert(ctx, g); err != nil {
		t.Fatalf("insert sub goal: %v", err)
	}

	freq := "weekly"
	count := 3
	sug := `{"type":"routine"}`
	a := &Action{
		SubGoalID:             g.ID,
		Title:                 "run",
		Position:              1,
		Type:                  "routine",
		RoutineFrequency:      &freq,
		RoutineWeekdays:       []int{1, 3, 5},
		RoutineCountPerPeriod: &count,
		AISuggestion:          &sug,
		CreatedAt:             now,
	}
	if err := store.Actions.Insert(ctx, a); err != nil {
		t.Fatalf("insert action: %v", err)
	}

	got, err := store.Actions.GetForUser(ctx, "u", a.ID)
	if err != nil {
		t.Fatalf("get action: %v", err)
	}
	if got == nil || got.Type != "routine" || *got.RoutineFrequency != "weekly" || len(got.RoutineWeekdays) != 3 || *got.RoutineCountPerPeriod != 3 {
		t.Fatalf("action = %+v", got)
	}
	if got.MissionCompletionType != nil || got.MissionPeriodEnd != nil {
		t.Fatalf("mission columns should be empty: %+v", got)
	}
	if other, err := store.Actions.GetForUser(ctx, "someone-else", a.ID); err != nil || other != nil {
		t.Fatalf("foreign user lookup = %+v, %v", other, err)
	}

	if err := store.Checks.Insert(ctx, &Check{UserID: "u", ActionID: a.ID, CheckedAt: now, XPAwarded: 10}); err != nil {
		t.Fatalf("insert check: %v", err)
	}
	found, err := store.Checks.FindInRange(ctx, "u", a.ID, now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil || found == nil || found.XPAwarded != 10 {
		t.Fatalf("find check = %+v, %v", found, err)
	}
	if miss, err := store.Checks.FindInRange(ctx, "u", a.ID, now.Add(time.Minute), now.Add(time.Hour)); err != nil || miss != nil {
		t.Fatalf("out of range check = %+v, %v", miss, err)
	}

	err = store.InTx(ctx, func(r Repos) error {
		return r.Mandalarts.Delete(ctx, m.ID)
	})
	if err != nil {
		t.Fatalf("delete mandalart: %v", err)
	}
	checks, err := store.Checks.ListSince(ctx, "u", time.Time{})
	if err != nil {
		t.Fatalf("list checks: %v", err)
	}
	if len(checks) != 0 {
		t.Fatalf("checks survived cascade: %d", len(checks))
	}
	if left, err := store.Actions.Get(ctx, a.ID); err != nil || left != nil {
		t.Fatalf("action survived cascade: %+v, %v", left, err)
	}
}

func TestAwardInsertIsOncePerKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	first, err := store.Awards.Insert(ctx, &XPAward{UserID: "u", Kind: "perfect_day", AwardedOn: "2024-05-15", XP: 50, CreatedAt: now})
	if err != nil || !first {
		t.Fatalf("first insert = %v, %v", first, err)
	}
	again, err := store.Awards.Insert(ctx, &XPAward{UserID: "u", Kind: "perfect_day", AwardedOn: "2024-05-15", XP: 50, CreatedAt: now})
	if err != nil || again {
		t.Fatalf("duplicate insert = %v, %v", again, err)
	}
	awards, err := store.Awards.ListByUser(ctx, "u")
	if err != nil || len(awards) != 1 {
		t.Fatalf("awards = %+v, %v", awards, err)
	}
}

func TestBonusActiveWindow(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	g := &BonusGrant{UserID: "u", BonusType: "comeback", Multiplier: 1.5, ActivatedAt: now, ExpiresAt: now.Add(72 * time.Hour)}
	if err := store.Bonuses.Insert(ctx, g); err != nil {
		t.Fatalf("insert grant: %v", err)
	}
	n, err := store.Bonuses.CountActive(ctx, "u", "comeback", now.Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("active count = %d, %v", n, err)
	}
	n, err = store.Bonuses.CountActive(ctx, "u", "comeback", now.Add(73*time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("expired count = %d, %v", n, err)
	}
	list, err := store.Bonuses.ListActive(ctx, "u", now)
	if err != nil || len(list) != 1 || list[0].Multiplier != 1.5 {
		t.Fatalf("active list = %+v, %v", list, err)
	}
}

func TestLevelGetOrCreate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	l, err := store.Levels.GetOrCreate(ctx, "u")
	if err != nil || l.Level != 1 || l.TotalXP != 0 {
		t.Fatalf("new level = %+v, %v", l, err)
	}
	l.TotalXP, l.Level = 450, 3
	if err := store.Levels.Update(ctx, l); err != nil {
		t.Fatalf("update: %v", err)
	}
	err = store.InTx(ctx, func(r Repos) error {
		locked, err := r.Levels.Lock(ctx, "u")
		if err != nil {
			return err
		}
		if locked.TotalXP != 450 {
			t.Fatalf("locked = %+v", locked)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
}
