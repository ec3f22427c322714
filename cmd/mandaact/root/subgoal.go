package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newSubGoalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subgoal",
		Aliases: []string{"sg"},
		Short:   "Manage the sub-goals of the active mandalart",
	}
	cmd.AddCommand(newSubGoalAddCmd(), newSubGoalListCmd())
	return cmd
}

func newSubGoalAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a sub-goal",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
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

			m, err := s.svc.ActiveMandalart(ctx, s.user())
			if err != nil {
				return noMandalart(err)
			}
			g, err := s.svc.AddSubGoal(ctx, m.ID, strings.Join(args, " "), s.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.IconPlus, ui.Key.Render(fmt.Sprintf("%d.", g.Position)), g.Title)
			return nil
		},
	}
}

func newSubGoalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sub-goals with their actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := s.svc.ActiveMandalart(ctx, s.user())
			if err != nil {
				return noMandalart(err)
			}
			goals, err := s.svc.ListSubGoals(ctx, m.ID)
			if err != nil {
				return err
			}
			actions, err := s.svc.ListActions(ctx, s.user())
			if err != nil {
				return err
			}
			count := map[string]int{}
			for _, a := range actions {
				count[a.SubGoalID]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGoal, m.Title))
			if len(goals) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no sub-goals yet)"))
				return nil
			}
			for _, g := range goals {
				fmt.Fprintf(out, "%s %s %s\n", ui.Key.Render(fmt.Sprintf("%d.", g.Position)), g.Title,
					ui.Muted.Render(fmt.Sprintf("(%d/%d actions)", count[g.ID], engine.MaxActionsPerGoal)))
			}
			return nil
		},
	}
}

// noMandalart turns the missing-mandalart error into a hint.
func noMandalart(err error) error {
	var nf engine.NotFoundError
	if errors.As(err, &nf) && nf.Kind == "mandalart" {
		return errors.New("no active mandalart; run `mandaact init <core goal>` first")
	}
	return err
}
