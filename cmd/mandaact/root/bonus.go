package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newBonusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bonus",
		Short: "Show active XP multipliers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ms, err := s.svc.ActiveMultipliers(ctx, s.user(), s.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "XP multipliers "+engine.FormatMultiplier(engine.TotalMultiplier(ms))))
			if len(ms) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no active bonus)"))
				return nil
			}
			for _, m := range ms {
				line := fmt.Sprintf("- %s %s", engine.BonusLabel(m.Type), ui.Gold.Render(engine.FormatMultiplier(m.Value)))
				if m.ExpiresAt != nil {
					line += ui.Muted.Render(fmt.Sprintf(" until %s (%d days left)", m.ExpiresAt.In(s.now().Location()).Format("2006-01-02 15:04"), m.DaysRemaining))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
