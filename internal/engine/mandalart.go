package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"mandaact/internal/storage"
)

const (
	MaxSubGoals       = 8
	MaxActionsPerGoal = 8
)

// CreateMandalart starts a new core goal and makes it the user's only active
// mandalart.
func (s *Service) CreateMandalart(ctx context.Context, userID, title string, now time.Time) (*storage.Mandalart, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ValidationError{Field: "user_id", Reason: "user id is required"}
	}
	m := &storage.Mandalart{UserID: userID, Title: t, IsActive: true, CreatedAt: now}
	err = s.store.InTx(ctx, func(r storage.Repos) error {
		if err := r.Mandalarts.Deactivate(ctx, userID); err != nil {
			return err
		}
		if _, err := r.Levels.GetOrCreate(ctx, userID); err != nil {
			return err
		}
		return r.Mandalarts.Insert(ctx, m)
	})
	if err != nil {
		return nil, err
	}
	s.log.Printf("mandalart created user=%s id=%s", userID, m.ID)
	return m, nil
}

// ActiveMandalart returns the user's active mandalart or a NotFoundError.
func (s *Service) ActiveMandalart(ctx context.Context, userID string) (*storage.Mandalart, error) {
	m, err := s.store.Mandalarts.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, NotFoundError{Kind: "mandalart", ID: "for user " + userID}
	}
	return m, nil
}

func (s *Service) DeleteMandalart(ctx context.Context, userID, id string) error {
	m, err := s.store.Mandalarts.Get(ctx, id)
	if err != nil {
		return err
	}
	if m == nil || m.UserID != userID {
		return NotFoundError{Kind: "mandalart", ID: id}
	}
	return s.store.InTx(ctx, func(r storage.Repos) error {
		return r.Mandalarts.Delete(ctx, id)
	})
}

// AddSubGoal appends a sub-goal at the next free position (1..8).
func (s *Service) AddSubGoal(ctx context.Context, mandalartID, title string, now time.Time) (*storage.SubGoal, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	g := &storage.SubGoal{MandalartID: mandalartID, Title: t, CreatedAt: now}
	err = s.store.InTx(ctx, func(r storage.Repos) error {
		m, err := r.Mandalarts.Get(ctx, mandalartID)
		if err != nil {
			return err
		}
		if m == nil {
			return NotFoundError{Kind: "mandalart", ID: mandalartID}
		}
		n, err := r.SubGoals.Count(ctx, mandalartID)
		if err != nil {
			return err
		}
		if n >= MaxSubGoals {
			return ValidationError{Field: "sub_goal", Reason: fmt.Sprintf("a mandalart holds at most %d sub-goals", MaxSubGoals)}
		}
		g.Position = n + 1
		return r.SubGoals.Insert(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) ListSubGoals(ctx context.Context, mandalartID string) ([]storage.SubGoal, error) {
	return s.store.SubGoals.ListByMandalart(ctx, mandalartID)
}

// ResolveSubGoal finds a sub-goal of the mandalart by id or by its position
// ("1".."8").
func (s *Service) ResolveSubGoal(ctx context.Context, mandalartID, ref string) (*storage.SubGoal, error) {
	goals, err := s.store.SubGoals.ListByMandalart(ctx, mandalartID)
	if err != nil {
		return nil, err
	}
	pos, posErr := strconv.Atoi(ref)
	for i := range goals {
		if goals[i].ID == ref || (posErr == nil && goals[i].Position == pos) {
			return &goals[i], nil
		}
	}
	return nil, NotFoundError{Kind: "sub-goal", ID: ref}
}
