package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

type boardModel struct {
	ctx    context.Context
	svc    *engine.Service
	userID string
	clock  Clock

	width  int
	height int

	items []engine.TodayItem
	dash  *engine.Dashboard

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	items []engine.TodayItem
	dash  *engine.Dashboard
	err   error
}

type toggledMsg struct {
	title   string
	check   *engine.CheckResult
	uncheck *engine.UncheckResult
	err     error
}

func newBoardModel(ctx context.Context, svc *engine.Service, userID string, clock Clock) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		userID:  userID,
		clock:   clock,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		now := m.clock()
		items, err := m.svc.TodayActions(m.ctx, m.userID, now)
		if err != nil {
			return loadedMsg{err: err}
		}
		dash, err := m.svc.Dashboard(m.ctx, m.userID, now)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{items: items, dash: dash}
	}
}

// toggleCmd checks an unchecked item and unchecks a checked one.
func (m boardModel) toggleCmd(it engine.TodayItem) tea.Cmd {
	return func() tea.Msg {
		now := m.clock()
		if it.CheckedToday {
			res, err := m.svc.UncheckAction(m.ctx, m.userID, it.Action.ID, now)
			return toggledMsg{title: it.Action.Title, uncheck: res, err: err}
		}
		res, err := m.svc.CheckAction(m.ctx, m.userID, it.Action.ID, now)
		return toggledMsg{title: it.Action.Title, check: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.dash = msg.dash
		if m.selected >= len(m.items) {
			m.selected = max(len(m.items)-1, 0)
		}
		return m, nil
	case toggledMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = toggleLog(msg)
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.items)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ", "enter":
			if m.selected < 0 || m.selected >= len(m.items) {
				return m, nil
			}
			it := m.items[m.selected]
			if !it.Action.Checkable() {
				m.lastLog = "Reference items are reminders and cannot be checked."
				return m, nil
			}
			m.lastLog = "Saving…"
			return m, m.toggleCmd(it)
		}
	}
	return m, nil
}

func toggleLog(msg toggledMsg) string {
	if msg.uncheck != nil {
		return fmt.Sprintf("Unchecked %q: -%d XP", msg.title, msg.uncheck.XPRemoved)
	}
	r := msg.check
	line := fmt.Sprintf("Checked %q: +%d XP", msg.title, r.XP)
	if r.Multiplier > 1 {
		line += " " + engine.FormatMultiplier(r.Multiplier)
	}
	if r.BonusXP > 0 {
		line += fmt.Sprintf(" (+%d bonus)", r.BonusXP)
	}
	if r.LeveledUp() {
		line += fmt.Sprintf(" | level %d → %d", r.LevelBefore, r.LevelAfter)
	}
	return line
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 28
	if m.width > 0 {
		leftW = max(min(leftW, m.width/2), 18)
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.dash == nil {
		return "MandaAct | loading…"
	}
	lv := m.dash.Level
	bar := ui.Bar(lv.TotalXP-lv.LevelStart, lv.NextLevel-lv.LevelStart, 30)
	title := m.dash.Mandalart
	if title == "" {
		title = "(no mandalart)"
	}
	return fmt.Sprintf("MandaAct | %s | %s | Level %d | XP %d %s",
		title, m.clock().Format("2006-01-02 Mon"), lv.Level, lv.TotalXP, bar)
}

func (m boardModel) renderSidebar() string {
	if m.dash == nil {
		return "Stats\n\nLoading…"
	}
	d := m.dash
	lines := []string{"Progress"}
	lines = append(lines, fmt.Sprintf("- today %d/%d %s", d.Completion.Today.Checked, d.Completion.Today.Total, ui.Bar(d.Completion.Today.Checked, d.Completion.Today.Total, 8)))
	lines = append(lines, fmt.Sprintf("- week  %d%%", d.Completion.Week.Percentage))
	lines = append(lines, fmt.Sprintf("- month %d%%", d.Completion.Month.Percentage))
	lines = append(lines, fmt.Sprintf("- streak %d (best %d)", d.Streak.Current, d.Streak.Longest))
	lines = append(lines, "")
	lines = append(lines, "Multipliers "+engine.FormatMultiplier(d.TotalMultiplier))
	if len(d.Multipliers) == 0 {
		lines = append(lines, "- none")
	}
	for _, mu := range d.Multipliers {
		line := fmt.Sprintf("- %s %s", engine.BonusLabel(mu.Type), engine.FormatMultiplier(mu.Value))
		if mu.DaysRemaining > 0 {
			line += fmt.Sprintf(" %dd", mu.DaysRemaining)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: check/uncheck")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	out := []string{"Today"}
	if len(m.items) == 0 {
		out = append(out, "(nothing to do today)")
		return strings.Join(out, "\n")
	}
	group := ""
	for i, it := range m.items {
		if it.SubGoalTitle != group {
			group = it.SubGoalTitle
			out = append(out, "", group)
		}
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		box := "[ ]"
		switch {
		case !it.Action.Checkable():
			box = " · "
		case it.CheckedToday:
			box = "[x]"
		}
		line := fmt.Sprintf("%s%s %s", cursor, box, it.Action.Title)
		if it.PeriodTarget > 0 && it.Period != nil {
			line += fmt.Sprintf(" (%d/%d)", it.PeriodCount, it.PeriodTarget)
		}
		if i == m.selected {
			line = ui.SelectedRow.Render(line)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
