package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// MandaAct theme (CLI + TUI).

const (
	IconGoal      = "🎯"
	IconSparkle   = "✨"
	IconPlus      = "➕"
	IconDone      = "✅"
	IconTodo      = "⬜"
	IconTrophy    = "🏆"
	IconBolt      = "⚡"
	IconFire      = "🔥"
	IconError     = "🧨"
	IconRoutine   = "🔁"
	IconMission   = "🚩"
	IconReference = "💡"
	IconCalendar  = "📅"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeLevelUp = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// TypeIcon maps an action type name to its icon.
func TypeIcon(actionType string) string {
	switch actionType {
	case "routine":
		return IconRoutine
	case "mission":
		return IconMission
	case "reference":
		return IconReference
	default:
		return IconGoal
	}
}

// ConfidenceText colors a classifier confidence level.
func ConfidenceText(confidence string) string {
	switch confidence {
	case "high":
		return Good.Render(confidence)
	case "medium":
		return Warn.Render(confidence)
	default:
		return Muted.Render(confidence)
	}
}

func CheckBox(checked bool) string {
	if checked {
		return IconDone
	}
	return IconTodo
}

// Bar renders a fixed-width progress bar for value out of total.
func Bar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	value = max(0, min(value, total))
	filled := min(value*width/total, width)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
