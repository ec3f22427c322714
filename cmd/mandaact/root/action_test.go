package root

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"mandaact/internal/engine"
)

func TestParseWeekdays(t *testing.T) {
	got, err := parseWeekdays("1, 3,5")
	if err != nil || !reflect.DeepEqual(got, []int{1, 3, 5}) {
		t.Fatalf("parseWeekdays = %v, %v", got, err)
	}
	if got, err := parseWeekdays(""); err != nil || got != nil {
		t.Fatalf("empty weekdays = %v, %v", got, err)
	}
	for _, bad := range []string{"7", "-1", "mon"} {
		if _, err := parseWeekdays(bad); err == nil {
			t.Fatalf("parseWeekdays(%q) should fail", bad)
		}
	}
}

func TestSettingsFlags(t *testing.T) {
	f := settingsFlags{weekdays: "1,3,5"}
	r, err := f.routine()
	if err != nil || r == nil || r.Frequency != engine.FrequencyWeekly || len(r.Weekdays) != 3 {
		t.Fatalf("routine = %+v, %v", r, err)
	}
	if m, err := f.mission(); err != nil || m != nil {
		t.Fatalf("mission without flags = %+v, %v", m, err)
	}

	f = settingsFlags{cycle: "Quarterly"}
	m, err := f.mission()
	if err != nil || m.CompletionType != engine.CompletionPeriodic || m.PeriodCycle != engine.CycleQuarterly {
		t.Fatalf("mission = %+v, %v", m, err)
	}
	if _, err := (&settingsFlags{cycle: "decade"}).mission(); err == nil {
		t.Fatalf("unknown cycle should fail")
	}
}

func TestDescribeSettings(t *testing.T) {
	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC)
	cases := []struct {
		a    engine.Action
		want string
	}{
		{engine.Action{Type: engine.ActionTypeRoutine, Routine: &engine.RoutineSettings{Frequency: engine.FrequencyWeekly, Weekdays: []int{1, 3, 5}}}, "weekly Mon/Wed/Fri"},
		{engine.Action{Type: engine.ActionTypeRoutine, Routine: &engine.RoutineSettings{Frequency: engine.FrequencyMonthly, CountPerPeriod: 2}}, "monthly 2x"},
		{engine.Action{Type: engine.ActionTypeMission, Mission: &engine.MissionSettings{CompletionType: engine.CompletionOnce, Status: engine.MissionActive}}, "once (active)"},
		{engine.Action{Type: engine.ActionTypeMission, Mission: &engine.MissionSettings{CompletionType: engine.CompletionPeriodic, PeriodCycle: engine.CycleQuarterly, CurrentPeriodStart: &start, CurrentPeriodEnd: &end}}, "periodic quarterly 2024-04-01 ~ 2024-06-30"},
		{engine.Action{Type: engine.ActionTypeReference}, "reference"},
	}
	for _, tc := range cases {
		if got := describeSettings(tc.a, time.UTC); got != tc.want {
			t.Fatalf("describeSettings = %q, want %q", got, tc.want)
		}
	}
}

func TestHeatmap(t *testing.T) {
	days := make([]engine.DayCompletion, 8)
	days[0] = engine.DayCompletion{Checked: 1, Percentage: 100}
	days[7] = engine.DayCompletion{Checked: 1, Percentage: 10}
	got := heatmap(days)
	if !strings.HasPrefix(got, "█") || !strings.HasSuffix(got, " ░") {
		t.Fatalf("heatmap = %q", got)
	}
}
