package engine

import (
	"context"
	"time"

	"mandaact/internal/storage"
)

// activateGrant inserts a grant of type t unless one is still active. Callers
// hold the user's level row lock, so the check and insert cannot interleave
// with another activation for the same user.
func (s *Service) activateGrant(ctx context.Context, r storage.Repos, userID string, t BonusType, now time.Time) (bool, error) {
	n, err := r.Bonuses.CountActive(ctx, userID, string(t), now)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	g := NewGrant("", userID, t, now)
	row := &storage.BonusGrant{
		UserID:      g.UserID,
		BonusType:   string(g.Type),
		Multiplier:  g.Multiplier,
		ActivatedAt: g.ActivatedAt,
		ExpiresAt:   g.ExpiresAt,
	}
	if err := r.Bonuses.Insert(ctx, row); err != nil {
		return false, err
	}
	s.log.Printf("bonus activated user=%s type=%s multiplier=%s expires=%s",
		userID, t, FormatMultiplier(g.Multiplier), g.ExpiresAt.Format(time.RFC3339))
	return true, nil
}

func (s *Service) activateLocked(ctx context.Context, userID string, t BonusType, now time.Time) (bool, error) {
	var ok bool
	err := s.store.InTx(ctx, func(r storage.Repos) error {
		if _, err := r.Levels.Lock(ctx, userID); err != nil {
			return err
		}
		var err error
		ok, err = s.activateGrant(ctx, r, userID, t, now)
		return err
	})
	return ok, err
}

// ActivateLevelMilestoneBonus grants the milestone multiplier for levels
// divisible by 5. It reports false for other levels and while a milestone
// grant is still active.
func (s *Service) ActivateLevelMilestoneBonus(ctx context.Context, userID string, level int, now time.Time) (bool, error) {
	if !IsMilestoneLevel(level) {
		return false, nil
	}
	return s.activateLocked(ctx, userID, BonusLevelMilestone, now)
}

func (s *Service) ActivatePerfectWeekBonus(ctx context.Context, userID string, now time.Time) (bool, error) {
	return s.activateLocked(ctx, userID, BonusPerfectWeek, now)
}

func (s *Service) ActivateComebackBonus(ctx context.Context, userID string, now time.Time) (bool, error) {
	return s.activateLocked(ctx, userID, BonusComeback, now)
}

// ActiveMultipliers lists the multipliers that apply to a check made at now.
func (s *Service) ActiveMultipliers(ctx context.Context, userID string, now time.Time) ([]Multiplier, error) {
	rows, err := s.store.Bonuses.ListActive(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return ActiveMultipliers(grantsFromRows(rows), now), nil
}
