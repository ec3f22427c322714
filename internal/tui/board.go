package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mandaact/internal/engine"
)

// Clock returns "now" in the user's zone.
type Clock func() time.Time

func RunBoard(ctx context.Context, svc *engine.Service, userID string, clock Clock, out io.Writer) error {
	m := newBoardModel(ctx, svc, userID, clock)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
