package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mandaact/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "mandaact",
	Short:         "MandaAct: practice tracker for mandalart goals",
	Long:          "MandaAct turns a mandalart (one core goal, eight sub-goals, eight actions each) into a daily practice checklist with XP, streaks and bonus multipliers.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newInitCmd(),
		newSubGoalCmd(),
		newActionCmd(),
		newSuggestCmd(),
		newPeriodCmd(),
		newTodayCmd(),
		newCheckCmd(),
		newUncheckCmd(),
		newStatusCmd(),
		newBonusCmd(),
		newBoardCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
