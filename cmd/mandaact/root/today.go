package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			now := s.now()
			items, err := s.svc.TodayActions(ctx, s.user(), now)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCalendar, now.Format("2006-01-02 (Mon)")))
			if len(items) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(nothing to do today)"))
				return nil
			}
			group := ""
			done := 0
			checkable := 0
			for _, it := range items {
				if it.SubGoalTitle != group {
					group = it.SubGoalTitle
					fmt.Fprintln(out, ui.H2.Render(group))
				}
				fmt.Fprintf(out, "  %s\n", todayLine(it))
				if it.Action.Checkable() {
					checkable++
					if it.CheckedToday {
						done++
					}
				}
			}
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.LabelValue("Done", fmt.Sprintf("%d/%d %s", done, checkable, ui.Bar(done, checkable, 16))))
			return nil
		},
	}
}

func todayLine(it engine.TodayItem) string {
	a := it.Action
	if !a.Checkable() {
		return fmt.Sprintf("%s %s", ui.IconReference, ui.Muted.Render(a.Title))
	}
	line := fmt.Sprintf("%s %s %s", ui.CheckBox(it.CheckedToday), a.Title, ui.Muted.Render(shortID(a.ID)))
	if it.Period != nil && it.PeriodTarget > 0 {
		progress := fmt.Sprintf("%d/%d", it.PeriodCount, it.PeriodTarget)
		if it.PeriodCount >= it.PeriodTarget {
			progress = ui.Good.Render(progress)
		}
		line += " " + progress
	}
	return line
}
