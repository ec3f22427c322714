package root

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mandaact/internal/ui"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <core goal>",
		Short: "Start a new mandalart (replaces the active one)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("core goal is required")
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

			m, err := s.svc.CreateMandalart(ctx, s.user(), strings.Join(args, " "), s.now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconGoal, m.Title))
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Next: mandaact subgoal add <title>"))
			return nil
		},
	}
	return cmd
}
