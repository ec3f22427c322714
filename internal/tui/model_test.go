package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mandaact/internal/engine"
)

func testModel(items []engine.TodayItem) boardModel {
	clock := func() time.Time { return time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC) }
	m := newBoardModel(context.Background(), nil, "u", clock)
	next, _ := m.Update(loadedMsg{items: items, dash: &engine.Dashboard{Mandalart: "goal"}})
	return next.(boardModel)
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestReferenceItemsCannotBeToggled(t *testing.T) {
	m := testModel([]engine.TodayItem{
		{Action: engine.Action{ID: "a", Title: "긍정적인 태도 유지", Type: engine.ActionTypeReference}},
	})
	next, cmd := m.Update(key('c'))
	if cmd != nil {
		t.Fatalf("expected no command for a reference item")
	}
	if got := next.(boardModel).lastLog; !strings.Contains(got, "cannot be checked") {
		t.Fatalf("lastLog = %q", got)
	}
}

func TestCursorStaysInRange(t *testing.T) {
	items := []engine.TodayItem{
		{Action: engine.Action{ID: "a", Title: "one", Type: engine.ActionTypeRoutine}},
		{Action: engine.Action{ID: "b", Title: "two", Type: engine.ActionTypeRoutine}},
	}
	m := testModel(items)
	for i := 0; i < 5; i++ {
		next, _ := m.Update(key('j'))
		m = next.(boardModel)
	}
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	if _, cmd := m.Update(key('c')); cmd == nil {
		t.Fatalf("expected a toggle command for a routine item")
	}
	if view := m.View(); !strings.Contains(view, "two") || !strings.Contains(view, "Today") {
		t.Fatalf("view missing items:\n%s", view)
	}
}

func TestToggleLog(t *testing.T) {
	got := toggleLog(toggledMsg{title: "run", check: &engine.CheckResult{XP: 15, Multiplier: 1.5, LevelBefore: 1, LevelAfter: 2}})
	if !strings.Contains(got, "+15 XP") || !strings.Contains(got, "×1.5") || !strings.Contains(got, "level 1 → 2") {
		t.Fatalf("check log = %q", got)
	}
	got = toggleLog(toggledMsg{title: "run", uncheck: &engine.UncheckResult{XPRemoved: 15}})
	if !strings.Contains(got, "-15 XP") {
		t.Fatalf("uncheck log = %q", got)
	}
}
