package engine

import (
	"fmt"
	"strings"
	"time"
)

type ActionType string

const (
	ActionTypeRoutine   ActionType = "routine"
	ActionTypeMission   ActionType = "mission"
	ActionTypeReference ActionType = "reference"
)

func (t ActionType) IsValid() bool {
	switch t {
	case ActionTypeRoutine, ActionTypeMission, ActionTypeReference:
		return true
	default:
		return false
	}
}

// ParseActionType accepts the stored names plus a few aliases.
func ParseActionType(input string) (ActionType, error) {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "routine", "habit":
		return ActionTypeRoutine, nil
	case "mission", "goal":
		return ActionTypeMission, nil
	case "reference", "ref", "mindset":
		return ActionTypeReference, nil
	default:
		return "", fmt.Errorf("invalid action type: %q", input)
	}
}

type RoutineFrequency string

const (
	FrequencyDaily   RoutineFrequency = "daily"
	FrequencyWeekly  RoutineFrequency = "weekly"
	FrequencyMonthly RoutineFrequency = "monthly"
)

type CompletionType string

const (
	CompletionOnce     CompletionType = "once"
	CompletionPeriodic CompletionType = "periodic"
)

type PeriodCycle string

const (
	CycleDaily     PeriodCycle = "daily"
	CycleWeekly    PeriodCycle = "weekly"
	CycleMonthly   PeriodCycle = "monthly"
	CycleQuarterly PeriodCycle = "quarterly"
	CycleYearly    PeriodCycle = "yearly"
)

func (c PeriodCycle) IsValid() bool {
	switch c {
	case CycleDaily, CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	default:
		return false
	}
}

func ParsePeriodCycle(input string) (PeriodCycle, error) {
	c := PeriodCycle(strings.TrimSpace(strings.ToLower(input)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid period cycle: %q", input)
	}
	return c, nil
}

type MissionStatus string

const (
	MissionActive    MissionStatus = "active"
	MissionCompleted MissionStatus = "completed"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RoutineSettings is populated only for routine actions.
type RoutineSettings struct {
	Frequency      RoutineFrequency `json:"frequency" validate:"required,oneof=daily weekly monthly"`
	Weekdays       []int            `json:"weekdays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	CountPerPeriod int              `json:"count_per_period,omitempty" validate:"omitempty,min=1"`
}

// MissionSettings is populated only for mission actions.
type MissionSettings struct {
	CompletionType     CompletionType `json:"completion_type" validate:"required,oneof=once periodic"`
	PeriodCycle        PeriodCycle    `json:"period_cycle,omitempty" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	CurrentPeriodStart *time.Time     `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end,omitempty"`
	Status             MissionStatus  `json:"status,omitempty" validate:"omitempty,oneof=active completed"`
}

// Action is a leaf practice item of a sub-goal.
type Action struct {
	ID         string           `json:"id"`
	SubGoalID  string           `json:"sub_goal_id"`
	Title      string           `json:"title"`
	Position   int              `json:"position"`
	Type       ActionType       `json:"type"`
	Routine    *RoutineSettings `json:"routine,omitempty"`
	Mission    *MissionSettings `json:"mission,omitempty"`
	Suggestion *Suggestion      `json:"suggestion,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Validate checks that exactly the settings group selected by Type is set.
func (a Action) Validate() error {
	switch a.Type {
	case ActionTypeRoutine:
		if a.Routine == nil || a.Mission != nil {
			return ValidationError{Field: "routine", Reason: "routine actions carry routine settings only"}
		}
	case ActionTypeMission:
		if a.Mission == nil || a.Routine != nil {
			return ValidationError{Field: "mission", Reason: "mission actions carry mission settings only"}
		}
		if a.Mission.CompletionType == CompletionPeriodic && !a.Mission.PeriodCycle.IsValid() {
			return ValidationError{Field: "mission.period_cycle", Reason: "periodic missions need a period cycle"}
		}
	case ActionTypeReference:
		if a.Routine != nil || a.Mission != nil {
			return ValidationError{Field: "type", Reason: "reference actions have no settings"}
		}
	default:
		return ValidationError{Field: "type", Reason: fmt.Sprintf("unknown action type %q", a.Type)}
	}
	return nil
}

// Checkable reports whether the action can receive check events.
func (a Action) Checkable() bool {
	return a.Type == ActionTypeRoutine || a.Type == ActionTypeMission
}
