package storage

import "time"

type Mandalart struct {
	ID        string
	UserID    string
	Title     string
	IsActive  bool
	CreatedAt time.Time
}

type SubGoal struct {
	ID          string
	MandalartID string
	Title       string
	Position    int
	CreatedAt   time.Time
}

// Action is the flat row form of an action. Settings columns are nil when
// they do not apply to the row's type.
type Action struct {
	ID        string
	SubGoalID string
	Title     string
	Position  int
	Type      string

	RoutineFrequency      *string
	RoutineWeekdays       []int
	RoutineCountPerPeriod *int

	MissionCompletionType *string
	MissionPeriodCycle    *string
	MissionPeriodStart    *time.Time
	MissionPeriodEnd      *time.Time
	MissionStatus         *string

	AISuggestion *string // JSON
	CreatedAt    time.Time
}

type Check struct {
	ID        string
	UserID    string
	ActionID  string
	CheckedAt time.Time
	XPAwarded int
}

type BonusGrant struct {
	ID          string
	UserID      string
	BonusType   string
	Multiplier  float64
	ActivatedAt time.Time
	ExpiresAt   time.Time
}

type UserLevel struct {
	UserID  string
	Level   int
	TotalXP int
}

type XPAward struct {
	ID        string
	UserID    string
	Kind      string
	AwardedOn string // YYYY-MM-DD in the user's zone
	XP        int
	CreatedAt time.Time
}
