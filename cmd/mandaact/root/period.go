package root

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mandaact/internal/config"
	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newPeriodCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "period <daily|weekly|monthly|quarterly|yearly>",
		Short: "Show the current period of a mission cycle and the ones after it",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("cycle is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle, err := engine.ParsePeriodCycle(args[0])
			if err != nil {
				return err
			}
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			now := cfg.Now()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCalendar, fmt.Sprintf("%s periods from %s", cycle, now.Format(time.DateOnly))))
			p := engine.InitialPeriod(cycle, now)
			for i := 0; i < count; i++ {
				label := engine.FormatPeriod(p)
				if i == 0 {
					label = ui.Good.Render(label) + ui.Muted.Render(" (current)")
				}
				fmt.Fprintf(out, "- %s\n", label)
				p = engine.NextPeriod(p.End, cycle)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of periods to show")
	return cmd
}
