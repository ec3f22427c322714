package ui

import "testing"

func TestBar(t *testing.T) {
	cases := []struct {
		value, total, width int
		want                string
	}{
		{0, 10, 4, "[----]"},
		{5, 10, 4, "[##--]"},
		{10, 10, 4, "[####]"},
		{15, 10, 4, "[####]"},
		{-3, 10, 4, "[----]"},
		{1, 0, 4, "[####]"},
		{1, 2, 1, "[#--]"},
	}
	for _, tc := range cases {
		if got := Bar(tc.value, tc.total, tc.width); got != tc.want {
			t.Fatalf("Bar(%d, %d, %d) = %q, want %q", tc.value, tc.total, tc.width, got, tc.want)
		}
	}
}

func TestTypeIcon(t *testing.T) {
	if TypeIcon("routine") != IconRoutine || TypeIcon("mission") != IconMission || TypeIcon("reference") != IconReference {
		t.Fatalf("type icons do not match")
	}
	if TypeIcon("other") != IconGoal {
		t.Fatalf("unknown type should fall back to the goal icon")
	}
}
