package root

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, completion rates, streaks and goal progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			d, err := s.svc.Dashboard(ctx, s.user(), s.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			title := d.Mandalart
			if title == "" {
				title = "(no active mandalart)"
			}
			fmt.Fprintln(out, ui.Heading(ui.IconGoal, title))
			lv := d.Level
			fmt.Fprintln(out, ui.LabelValue("Level", lv.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d %s %s", lv.TotalXP,
				ui.Bar(lv.TotalXP-lv.LevelStart, lv.NextLevel-lv.LevelStart, 20),
				ui.Muted.Render(fmt.Sprintf("(next at %d)", lv.NextLevel)))))
			fmt.Fprintln(out, ui.LabelValue("Multiplier", engine.FormatMultiplier(d.TotalMultiplier)))
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render("📊 Completion"))
			printStat(out, "Today", d.Completion.Today)
			printStat(out, "Week", d.Completion.Week)
			printStat(out, "Month", d.Completion.Month)
			fmt.Fprintln(out, "")

			fmt.Fprintln(out, ui.H2.Render(ui.IconFire+" Streak"))
			fmt.Fprintf(out, "- current %d, longest %d\n", d.Streak.Current, d.Streak.Longest)
			if d.Streak.LastCheckDate != nil {
				fmt.Fprintf(out, "- last check %s\n", d.Streak.LastCheckDate.In(s.now().Location()).Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(out, "")

			if len(d.Goals) > 0 {
				fmt.Fprintln(out, ui.H2.Render("🧭 Sub-goals (this week)"))
				for _, g := range d.Goals {
					fmt.Fprintf(out, "- %s %s %d%% %s\n", padTitle(g.Title, 16), ui.Bar(g.WeeklyPercentage, 100, 10), g.WeeklyPercentage,
						ui.Muted.Render(fmt.Sprintf("today %d/%d", g.CheckedToday, g.TotalActions)))
				}
				fmt.Fprintln(out, "")
			}

			if len(d.Daily) > 0 {
				fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Last %d days", ui.IconCalendar, len(d.Daily))))
				fmt.Fprintln(out, heatmap(d.Daily))
				fmt.Fprintln(out, "")
			}

			tod := d.TimeOfDay
			fmt.Fprintln(out, ui.H2.Render("🕒 When you practice"))
			fmt.Fprintf(out, "- morning %d, afternoon %d, evening %d, night %d\n", tod.Morning, tod.Afternoon, tod.Evening, tod.Night)
			return nil
		},
	}
	return cmd
}

func printStat(out io.Writer, label string, st engine.PeriodStat) {
	fmt.Fprintf(out, "- %s %s %d%% %s\n", padTitle(label, 6), ui.Bar(st.Percentage, 100, 20), st.Percentage,
		ui.Muted.Render(fmt.Sprintf("(%d/%d)", st.Checked, st.Total)))
}

// heatmap renders one cell per day, darker for higher completion.
func heatmap(days []engine.DayCompletion) string {
	cells := []string{"·", "░", "▒", "▓", "█"}
	var b strings.Builder
	for i, d := range days {
		if i > 0 && i%7 == 0 {
			b.WriteString(" ")
		}
		idx := 0
		if d.Checked > 0 {
			idx = min(1+d.Percentage*3/100, 4)
		}
		b.WriteString(cells[idx])
	}
	return b.String()
}

func padTitle(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
