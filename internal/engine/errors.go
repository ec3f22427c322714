package engine

import "fmt"

// ValidationError reports an action draft or settings the store would reject.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid action: " + e.Reason
	}
	return fmt.Sprintf("invalid action: %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NotCheckableError is returned when a reference action is checked.
type NotCheckableError struct {
	ActionID string
}

func (e NotCheckableError) Error() string {
	return fmt.Sprintf("action %s is a reference item and cannot be checked", e.ActionID)
}

// AlreadyCheckedError is returned on a second check of an action on the same day.
type AlreadyCheckedError struct {
	ActionID string
	Day      string
}

func (e AlreadyCheckedError) Error() string {
	return fmt.Sprintf("action %s is already checked on %s", e.ActionID, e.Day)
}

// MissionCompletedError is returned when a finished once-mission is checked again.
type MissionCompletedError struct {
	ActionID string
}

func (e MissionCompletedError) Error() string {
	return fmt.Sprintf("mission %s is already completed", e.ActionID)
}

type NotCheckedError struct {
	ActionID string
	Day      string
}

func (e NotCheckedError) Error() string {
	return fmt.Sprintf("action %s has no check on %s", e.ActionID, e.Day)
}
