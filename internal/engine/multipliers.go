package engine

import (
	"fmt"
	"math"
	"time"
)

type BonusType string

const (
	BonusWeekend        BonusType = "weekend"
	BonusComeback       BonusType = "comeback"
	BonusLevelMilestone BonusType = "level_milestone"
	BonusPerfectWeek    BonusType = "perfect_week"
)

// bonusRule describes a multiplier kind. Weekend has no duration: it is
// derived from the calendar and never stored.
type bonusRule struct {
	Value    float64
	Duration time.Duration
	Label    string
}

var bonusRules = map[BonusType]bonusRule{
	BonusWeekend:        {Value: 1.5, Label: "weekend"},
	BonusComeback:       {Value: 1.5, Duration: 3 * 24 * time.Hour, Label: "comeback"},
	BonusLevelMilestone: {Value: 2.0, Duration: 7 * 24 * time.Hour, Label: "level milestone"},
	BonusPerfectWeek:    {Value: 2.0, Duration: 7 * 24 * time.Hour, Label: "perfect week"},
}

// ComebackGapDays is how long a user must be away before the comeback
// multiplier is granted.
const ComebackGapDays = 3

// BonusValue returns the multiplier value of a bonus type.
func BonusValue(t BonusType) float64 { return bonusRules[t].Value }

// BonusDuration returns how long a persisted grant of t lasts.
func BonusDuration(t BonusType) time.Duration { return bonusRules[t].Duration }

func BonusLabel(t BonusType) string {
	if r, ok := bonusRules[t]; ok {
		return r.Label
	}
	return string(t)
}

// Grant is a persisted bonus multiplier.
type Grant struct {
	ID          string
	UserID      string
	Type        BonusType
	Multiplier  float64
	ActivatedAt time.Time
	ExpiresAt   time.Time
}

func (g Grant) ActiveAt(now time.Time) bool {
	return now.Before(g.ExpiresAt)
}

type Multiplier struct {
	Type          BonusType  `json:"type"`
	Value         float64    `json:"multiplier"`
	Active        bool       `json:"active"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	DaysRemaining int        `json:"days_remaining,omitempty"`
}

func IsWeekend(now time.Time) bool {
	wd := now.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func daysRemaining(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// ActiveMultipliers combines the calendar weekend bonus with unexpired
// grants. At most one entry is returned per grant type; the latest expiry
// wins.
func ActiveMultipliers(grants []Grant, now time.Time) []Multiplier {
	var out []Multiplier
	if IsWeekend(now) {
		out = append(out, Multiplier{Type: BonusWeekend, Value: BonusValue(BonusWeekend), Active: true})
	}
	for _, t := range []BonusType{BonusComeback, BonusLevelMilestone, BonusPerfectWeek} {
		var best *Grant
		for i := range grants {
			g := &grants[i]
			if g.Type != t || !g.ActiveAt(now) {
				continue
			}
			if best == nil || g.ExpiresAt.After(best.ExpiresAt) {
				best = g
			}
		}
		if best == nil {
			continue
		}
		exp := best.ExpiresAt
		value := best.Multiplier
		if value < 1 {
			value = BonusValue(t)
		}
		out = append(out, Multiplier{
			Type:          t,
			Value:         value,
			Active:        true,
			ExpiresAt:     &exp,
			DaysRemaining: daysRemaining(exp, now),
		})
	}
	return out
}

// TotalMultiplier sums the active multipliers. With none active the
// baseline is 1.0.
func TotalMultiplier(ms []Multiplier) float64 {
	total := 0.0
	n := 0
	for _, m := range ms {
		if !m.Active {
			continue
		}
		total += m.Value
		n++
	}
	if n == 0 {
		return 1.0
	}
	return total
}

func FormatMultiplier(v float64) string {
	return fmt.Sprintf("×%.1f", v)
}

// IsMilestoneLevel reports levels that earn the milestone multiplier.
func IsMilestoneLevel(level int) bool {
	return level > 0 && level%5 == 0
}

// HasActiveGrant reports whether a grant of type t is unexpired at now.
func HasActiveGrant(grants []Grant, t BonusType, now time.Time) bool {
	for _, g := range grants {
		if g.Type == t && g.ActiveAt(now) {
			return true
		}
	}
	return false
}

// NewGrant builds a grant of type t starting at now.
func NewGrant(id, userID string, t BonusType, now time.Time) Grant {
	return Grant{
		ID:          id,
		UserID:      userID,
		Type:        t,
		Multiplier:  BonusValue(t),
		ActivatedAt: now,
		ExpiresAt:   now.Add(BonusDuration(t)),
	}
}

// IsComeback reports whether a check at now follows a gap of at least
// ComebackGapDays calendar days since lastCheck.
func IsComeback(lastCheck *time.Time, now time.Time) bool {
	if lastCheck == nil {
		return false
	}
	return dayKey(now)-dayKey(lastCheck.In(now.Location())) >= ComebackGapDays
}
