package root

import (
	"context"

	"github.com/spf13/cobra"

	"mandaact/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the practice board TUI",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			s, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, s.svc, s.user(), s.now, cmd.OutOrStdout())
		},
	}

	return cmd
}
