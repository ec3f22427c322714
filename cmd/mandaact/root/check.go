package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <action-id>",
		Short: "Check an action for today",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("action id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveAction(ctx, s, args[0])
			if err != nil {
				return err
			}
			res, err := s.svc.CheckAction(ctx, s.user(), id, s.now())
			if err != nil {
				return err
			}
			printCheckResult(cmd, res)
			return nil
		},
	}
}

func printCheckResult(cmd *cobra.Command, res *engine.CheckResult) {
	out := cmd.OutOrStdout()
	line := fmt.Sprintf("%s +%d XP", ui.IconDone, res.XP)
	if res.Multiplier > 1 {
		line += " " + ui.Gold.Render(engine.FormatMultiplier(res.Multiplier))
	}
	fmt.Fprintln(out, ui.Good.Render(line))
	if res.Streak > 1 {
		fmt.Fprintf(out, "%s %d day streak\n", ui.IconFire, res.Streak)
	}
	if res.Comeback {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconBolt+" Welcome back! comeback bonus active"))
	}
	if res.MissionCompleted {
		fmt.Fprintln(out, ui.Good.Render(ui.IconMission+" mission completed"))
	}
	if res.PerfectDay {
		fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s perfect day +%d XP", ui.IconTrophy, engine.PerfectDayXP)))
	}
	if res.PerfectWeek {
		fmt.Fprintln(out, ui.Gold.Render(fmt.Sprintf("%s perfect week +%d XP", ui.IconTrophy, engine.PerfectWeekXP)))
	}
	if res.LeveledUp() {
		fmt.Fprintf(out, "%s %d → %d\n", ui.BadgeLevelUp, res.LevelBefore, res.LevelAfter)
	}
	if res.MilestoneBonus {
		fmt.Fprintln(out, ui.Gold.Render(ui.IconSparkle+" level milestone bonus active"))
	}
	fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("total %d XP", res.TotalXP)))
}

func newUncheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncheck <action-id>",
		Short: "Undo today's check of an action",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("action id is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveAction(ctx, s, args[0])
			if err != nil {
				return err
			}
			res, err := s.svc.UncheckAction(ctx, s.user(), id, s.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -%d XP %s\n", ui.IconTodo, res.XPRemoved, ui.Muted.Render(fmt.Sprintf("(total %d, level %d)", res.TotalXP, res.Level)))
			return nil
		},
	}
}
