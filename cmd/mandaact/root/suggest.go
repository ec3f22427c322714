package root

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

func newSuggestCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "suggest <title>",
		Short: "Show the type the classifier picks for an action title",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			sug := engine.Suggest(title)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sug)
			}

			fmt.Fprintln(out, ui.Heading(ui.TypeIcon(string(sug.Type)), title))
			fmt.Fprintln(out, ui.LabelValue("Type", sug.Type))
			fmt.Fprintln(out, ui.LabelValue("Confidence", ui.ConfidenceText(string(sug.Confidence))))
			fmt.Fprintln(out, ui.LabelValue("Rule", engine.SuggestRule(title)))
			fmt.Fprintln(out, ui.LabelValue("Reason", sug.Reason))
			r, m := sug.Apply()
			a := engine.Action{Type: sug.Type, Routine: r, Mission: m}
			fmt.Fprintln(out, ui.LabelValue("Settings", describeSettings(a, time.UTC)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the suggestion as JSON")
	return cmd
}
