package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mandaact/internal/engine"
	"mandaact/internal/ui"
)

// settingsFlags are the type editor's knobs shared by `action add` and
// `action type`.
type settingsFlags struct {
	freq       string
	weekdays   string
	count      int
	completion string
	cycle      string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.freq, "freq", "", "Routine frequency (daily|weekly|monthly)")
	cmd.Flags().StringVar(&f.weekdays, "weekdays", "", "Routine weekdays, 0=Sun..6=Sat (e.g. 1,3,5)")
	cmd.Flags().IntVar(&f.count, "count", 0, "Routine checks per week/month")
	cmd.Flags().StringVar(&f.completion, "completion", "", "Mission completion (once|periodic)")
	cmd.Flags().StringVar(&f.cycle, "cycle", "", "Periodic mission cycle (daily|weekly|monthly|quarterly|yearly)")
}

func (f *settingsFlags) routine() (*engine.RoutineSettings, error) {
	if f.freq == "" && f.weekdays == "" && f.count == 0 {
		return nil, nil
	}
	r := &engine.RoutineSettings{Frequency: engine.RoutineFrequency(strings.ToLower(f.freq)), CountPerPeriod: f.count}
	days, err := parseWeekdays(f.weekdays)
	if err != nil {
		return nil, err
	}
	r.Weekdays = days
	// Weekdays or a count without --freq mean a weekly routine.
	if r.Frequency == "" {
		r.Frequency = engine.FrequencyWeekly
	}
	return r, nil
}

func (f *settingsFlags) mission() (*engine.MissionSettings, error) {
	if f.completion == "" && f.cycle == "" {
		return nil, nil
	}
	m := &engine.MissionSettings{CompletionType: engine.CompletionType(strings.ToLower(f.completion))}
	if f.cycle != "" {
		c, err := engine.ParsePeriodCycle(f.cycle)
		if err != nil {
			return nil, err
		}
		m.PeriodCycle = c
		if m.CompletionType == "" {
			m.CompletionType = engine.CompletionPeriodic
		}
	}
	return m, nil
}

func parseWeekdays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday %q (use 0..6, 0=Sunday)", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func newActionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "action",
		Aliases: []string{"a"},
		Short:   "Manage actions",
	}
	cmd.AddCommand(newActionAddCmd(), newActionListCmd(), newActionTypeCmd(), newActionRmCmd())
	return cmd
}

func newActionAddCmd() *cobra.Command {
	var subGoal string
	var typ string
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an action (type is suggested from the title unless --type is given)",
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
			g, err := s.svc.ResolveSubGoal(ctx, m.ID, subGoal)
			if err != nil {
				return err
			}
			in := engine.AddActionInput{SubGoalID: g.ID, Title: strings.Join(args, " ")}
			if typ != "" {
				if in.Type, err = engine.ParseActionType(typ); err != nil {
					return err
				}
			}
			if in.Routine, err = flags.routine(); err != nil {
				return err
			}
			if in.Mission, err = flags.mission(); err != nil {
				return err
			}

			a, err := s.svc.AddAction(ctx, in, s.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s %s\n", ui.IconPlus, ui.TypeIcon(string(a.Type)), a.Title, ui.Muted.Render(shortID(a.ID)))
			fmt.Fprintln(out, ui.LabelValue("Settings", describeSettings(*a, s.now().Location())))
			if a.Suggestion != nil && typ == "" {
				fmt.Fprintln(out, ui.LabelValue("Suggested", fmt.Sprintf("%s (%s) %s", a.Suggestion.Type, ui.ConfidenceText(string(a.Suggestion.Confidence)), ui.Muted.Render(a.Suggestion.Reason))))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&subGoal, "subgoal", "g", "1", "Sub-goal position (1-8) or id")
	cmd.Flags().StringVarP(&typ, "type", "t", "", "Action type (routine|mission|reference)")
	flags.register(cmd)
	return cmd
}

func newActionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every action of the active mandalart",
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconGoal, m.Title))
			loc := s.now().Location()
			for _, g := range goals {
				fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%d. %s", g.Position, g.Title)))
				n := 0
				for _, a := range actions {
					if a.SubGoalID != g.ID {
						continue
					}
					n++
					fmt.Fprintf(out, "  %s %s %s %s\n", ui.TypeIcon(string(a.Type)), a.Title,
						ui.Muted.Render(describeSettings(a, loc)), ui.Muted.Render(shortID(a.ID)))
				}
				if n == 0 {
					fmt.Fprintln(out, ui.Muted.Render("  (no actions)"))
				}
			}
			return nil
		},
	}
}

func newActionTypeCmd() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "type <action-id> <routine|mission|reference>",
		Short: "Change an action's type and settings",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("action id and type are required")
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
			typ, err := engine.ParseActionType(args[1])
			if err != nil {
				return err
			}
			in := engine.ActionSettings{Type: typ}
			if in.Routine, err = flags.routine(); err != nil {
				return err
			}
			if in.Mission, err = flags.mission(); err != nil {
				return err
			}
			a, err := s.svc.UpdateActionType(ctx, s.user(), id, in, s.now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.TypeIcon(string(a.Type)), a.Title, ui.Muted.Render(describeSettings(*a, s.now().Location())))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newActionRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <action-id>",
		Short: "Delete an action and its check history",
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
			if err := s.svc.DeleteAction(ctx, s.user(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("deleted "+shortID(id)))
			return nil
		},
	}
}

// resolveAction accepts a full action id or a unique prefix of one.
func resolveAction(ctx context.Context, s *session, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	actions, err := s.svc.ListActions(ctx, s.user())
	if err != nil {
		return "", err
	}
	var match string
	for _, a := range actions {
		if a.ID == ref {
			return a.ID, nil
		}
		if strings.HasPrefix(a.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("action id %q is ambiguous", ref)
			}
			match = a.ID
		}
	}
	if match == "" {
		return "", engine.NotFoundError{Kind: "action", ID: ref}
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func describeSettings(a engine.Action, loc *time.Location) string {
	switch {
	case a.Type == engine.ActionTypeRoutine && a.Routine != nil:
		r := a.Routine
		s := string(r.Frequency)
		if len(r.Weekdays) > 0 {
			days := make([]string, 0, len(r.Weekdays))
			for _, d := range r.Weekdays {
				days = append(days, weekdayNames[d])
			}
			s += " " + strings.Join(days, "/")
		} else if r.CountPerPeriod > 0 {
			s += fmt.Sprintf(" %dx", r.CountPerPeriod)
		}
		return s
	case a.Type == engine.ActionTypeMission && a.Mission != nil:
		m := a.Mission
		if m.CompletionType == engine.CompletionPeriodic {
			s := "periodic " + string(m.PeriodCycle)
			if m.CurrentPeriodStart != nil && m.CurrentPeriodEnd != nil {
				s += " " + engine.FormatPeriod(engine.Period{Start: m.CurrentPeriodStart.In(loc), End: m.CurrentPeriodEnd.In(loc)})
			}
			return s
		}
		return "once (" + string(m.Status) + ")"
	default:
		return "reference"
	}
}
