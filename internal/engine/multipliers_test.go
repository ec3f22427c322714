package engine

import (
	"math"
	"testing"
	"time"
)

func TestTotalMultiplier(t *testing.T) {
	cases := []struct {
		ms   []Multiplier
		want float64
	}{
		{nil, 1.0},
		{[]Multiplier{{Value: 1.5, Active: true}, {Value: 1.5, Active: true}}, 3.0},
		{[]Multiplier{{Value: 1.5, Active: true}, {Value: 2.0, Active: true}, {Value: 2.0, Active: true}}, 5.5},
		{[]Multiplier{{Value: 2.0, Active: false}}, 1.0},
	}
	for _, tc := range cases {
		if got := TotalMultiplier(tc.ms); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("TotalMultiplier(%v) = %v, want %v", tc.ms, got, tc.want)
		}
	}
}

func TestFormatMultiplier(t *testing.T) {
	if got := FormatMultiplier(1.5); got != "×1.5" {
		t.Fatalf("got %q", got)
	}
	if got := FormatMultiplier(2); got != "×2.0" {
		t.Fatalf("got %q", got)
	}
}

func TestIsMilestoneLevel(t *testing.T) {
	for level, want := range map[int]bool{0: false, 4: false, 5: true, 10: true, 12: false} {
		if got := IsMilestoneLevel(level); got != want {
			t.Fatalf("IsMilestoneLevel(%d) = %v, want %v", level, got, want)
		}
	}
}

func TestActiveMultipliersWeekend(t *testing.T) {
	sat := at(2024, time.May, 18, 10, 0)
	wed := at(2024, time.May, 15, 10, 0)

	got := ActiveMultipliers(nil, sat)
	if len(got) != 1 || got[0].Type != BonusWeekend || got[0].Value != 1.5 {
		t.Fatalf("saturday multipliers = %+v", got)
	}
	if got := ActiveMultipliers(nil, wed); len(got) != 0 {
		t.Fatalf("weekday multipliers = %+v", got)
	}
}

func TestActiveMultipliersGrants(t *testing.T) {
	now := at(2024, time.May, 15, 10, 0)
	grants := []Grant{
		NewGrant("1", "u", BonusComeback, now.Add(-24*time.Hour)),        // 2 days left
		NewGrant("2", "u", BonusLevelMilestone, now.Add(-8*24*time.Hour)), // expired
		NewGrant("3", "u", BonusPerfectWeek, now.Add(-time.Hour)),
	}
	got := ActiveMultipliers(grants, now)
	if len(got) != 2 {
		t.Fatalf("multipliers = %+v", got)
	}
	if got[0].Type != BonusComeback || got[0].Value != 1.5 || got[0].DaysRemaining != 2 {
		t.Fatalf("comeback = %+v", got[0])
	}
	if got[1].Type != BonusPerfectWeek || got[1].Value != 2.0 || got[1].DaysRemaining != 7 {
		t.Fatalf("perfect week = %+v", got[1])
	}
	if total := TotalMultiplier(got); total != 3.5 {
		t.Fatalf("total = %v, want 3.5", total)
	}
}

func TestIsComeback(t *testing.T) {
	now := at(2024, time.May, 15, 10, 0)
	if IsComeback(nil, now) {
		t.Fatalf("first ever check is not a comeback")
	}
	recent := at(2024, time.May, 13, 23, 0)
	if IsComeback(&recent, now) {
		t.Fatalf("two day gap treated as comeback")
	}
	away := at(2024, time.May, 12, 8, 0)
	if !IsComeback(&away, now) {
		t.Fatalf("three day gap not treated as comeback")
	}
}
