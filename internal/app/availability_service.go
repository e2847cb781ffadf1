package app

import (
	"context"
	"time"

	"github.com/pBarszczewska/booking-api/internal/clock"
	"github.com/pBarszczewska/booking-api/internal/domain"
)

// AvailabilityRepository provides the read side for availability checks.
type AvailabilityRepository interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	FindCovering(ctx context.Context, itemID string, at time.Time) (*domain.Reservation, error)
	ListCovering(ctx context.Context, at time.Time) ([]domain.Reservation, error)
}

// AvailabilityService derives bookable state from the reservation set.
// Nothing here is persisted: every answer is recomputed from storage, so
// it can never drift from the reservations themselves.
type AvailabilityService struct {
	repo  AvailabilityRepository
	clock clock.Clock
}

func NewAvailabilityService(repo AvailabilityRepository, clk clock.Clock) *AvailabilityService {
	return &AvailabilityService{
		repo:  repo,
		clock: clk,
	}
}

// IsAvailable reports whether the item is free at the given instant. A
// zero instant means "now".
func (s *AvailabilityService) IsAvailable(ctx context.Context, itemID string, at time.Time) (bool, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}
	covering, err := s.repo.FindCovering(ctx, itemID, at)
	if err != nil {
		return false, err
	}
	return covering == nil, nil
}

// ItemAvailability is a point-in-time snapshot; ComputedAt records the
// instant it was derived for, and it must not be trusted for a later
// booking decision.
type ItemAvailability struct {
	Available   []domain.Item
	Unavailable []domain.Item
	ComputedAt  time.Time
}

// ComputeAvailableItems partitions the whole catalog by whether an active
// reservation covers the given instant. A zero instant means "now".
func (s *AvailabilityService) ComputeAvailableItems(ctx context.Context, at time.Time) (ItemAvailability, error) {
	if at.IsZero() {
		at = s.clock.Now()
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return ItemAvailability{}, err
	}
	covering, err := s.repo.ListCovering(ctx, at)
	if err != nil {
		return ItemAvailability{}, err
	}

	booked := make(map[string]struct{}, len(covering))
	for _, r := range covering {
		booked[r.ItemID] = struct{}{}
	}

	result := ItemAvailability{
		Available:   make([]domain.Item, 0, len(items)),
		Unavailable: make([]domain.Item, 0),
		ComputedAt:  at,
	}
	for _, item := range items {
		if _, taken := booked[item.ID]; taken {
			result.Unavailable = append(result.Unavailable, item)
		} else {
			result.Available = append(result.Available, item)
		}
	}
	return result, nil
}
