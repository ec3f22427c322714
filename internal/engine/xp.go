package engine

import "math"

const (
	// CheckBaseXP is awarded for every check before bonuses.
	CheckBaseXP = 10

	// StreakBonusXP is added once the current streak reaches StreakBonusDays.
	StreakBonusXP   = 5
	StreakBonusDays = 7

	PerfectDayXP  = 50
	PerfectWeekXP = 200

	// PerfectWeekThreshold is the week completion percentage that counts as
	// a perfect week.
	PerfectWeekThreshold = 80
)

// earlyLevels are the hand-tuned thresholds before the quadratic curve.
var earlyLevels = [...]int{0, 0, 100, 400}

// XPRequiredForLevel returns the total XP threshold required to be at the given level.
// Levels 1-3 use fixed thresholds; from level 4 the threshold is
// 25(L+1)² + 25(L+1) - 50.
func XPRequiredForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level < len(earlyLevels) {
		return earlyLevels[level]
	}
	n := level + 1
	return 25*n*n + 25*n - 50
}

// LevelForTotalXP returns the highest level L such that totalXP >= XPRequiredForLevel(L).
// The minimum level is 1.
func LevelForTotalXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}

	// Exponential search upper bound, then binary search.
	low := 1
	high := 2
	for XPRequiredForLevel(high) <= totalXP {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}

	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= totalXP {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// XPForNextLevel is the total XP at which level+1 starts.
func XPForNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return XPRequiredForLevel(level + 1)
}

type LevelProgress struct {
	Level      int `json:"level"`
	TotalXP    int `json:"total_xp"`
	LevelStart int `json:"level_start"`
	NextLevel  int `json:"next_level"`
	Percentage int `json:"percentage"`
}

// ProgressForXP places totalXP within its level band.
func ProgressForXP(totalXP int) LevelProgress {
	if totalXP < 0 {
		totalXP = 0
	}
	lvl := LevelForTotalXP(totalXP)
	start := XPRequiredForLevel(lvl)
	next := XPForNextLevel(lvl)
	return LevelProgress{
		Level:      lvl,
		TotalXP:    totalXP,
		LevelStart: start,
		NextLevel:  next,
		Percentage: percentage(totalXP-start, next-start),
	}
}

// CheckXP is the XP for a single check given the current streak and the
// combined multiplier.
func CheckXP(currentStreak int, totalMultiplier float64) int {
	subtotal := CheckBaseXP
	if currentStreak >= StreakBonusDays {
		subtotal += StreakBonusXP
	}
	if totalMultiplier <= 0 {
		totalMultiplier = 1
	}
	return int(math.Floor(float64(subtotal) * totalMultiplier))
}
