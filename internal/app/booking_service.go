package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pBarszczewska/booking-api/internal/clock"
	"github.com/pBarszczewska/booking-api/internal/domain"
)

// BookingRepository is the storage contract for reservations. All writes
// for one item go through WithTx combined with GetItemForUpdate so the
// conflict-check-then-insert sequence is serialized per item.
type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForUpdate(ctx context.Context, itemID string) (domain.Item, error)
	FindConflicting(ctx context.Context, itemID string, start, end time.Time, excludeID string, now time.Time) (*domain.Reservation, error)
	CreateReservation(ctx context.Context, r domain.Reservation) error
	GetReservation(ctx context.Context, id string) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, id string) (bool, error)
	UpdateReservation(ctx context.Context, id, itemID, itemName string, start, end time.Time) error
	ListByUsername(ctx context.Context, username string) ([]domain.Reservation, error)
	ListAll(ctx context.Context) ([]domain.Reservation, error)
}

// UserDirectory resolves users; lookup is case-insensitive and trimmed.
type UserDirectory interface {
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ItemCatalog resolves items by name; lookup is case-insensitive and trimmed.
type ItemCatalog interface {
	FindItemByName(ctx context.Context, name string) (*domain.Item, error)
}

// BookingNotification carries the data the confirmation message needs.
type BookingNotification struct {
	Email    string
	Username string
	ItemName string
	StartAt  time.Time
	EndAt    time.Time
}

// Notifier delivers booking confirmations. Delivery is best-effort; a
// failure never affects the booking outcome.
type Notifier interface {
	BookingConfirmed(ctx context.Context, n BookingNotification) error
}

// BookingMetrics records booking outcomes. Implementations must be safe
// for concurrent use.
type BookingMetrics interface {
	BookingCreated()
	BookingCancelled()
	BookingRescheduled()
	BookingConflict()
}

type BookingService struct {
	repo     BookingRepository
	users    UserDirectory
	items    ItemCatalog
	clock    clock.Clock
	notifier Notifier
	metrics  BookingMetrics
	logger   *slog.Logger

	location      *time.Location
	retryAttempts int
	retryBackoff  time.Duration
	notifyTimeout time.Duration
}

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 100 * time.Millisecond
	defaultNotifyTimeout = 10 * time.Second
)

func NewBookingService(repo BookingRepository, users UserDirectory, items ItemCatalog, clk clock.Clock, opts ...BookingServiceOption) *BookingService {
	svc := &BookingService{
		repo:          repo,
		users:         users,
		items:         items,
		clock:         clk,
		logger:        slog.Default(),
		location:      time.Local,
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type BookingServiceOption func(*BookingService)

// WithNotifier wires the confirmation sender. Without one, confirmations
// are skipped.
func WithNotifier(n Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = n
	}
}

// WithMetrics wires the outcome counters.
func WithMetrics(m BookingMetrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the wall-clock zone booking starts are interpreted in.
func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRetry overrides the bounded retry applied to transient storage
// failures inside the critical section.
func WithRetry(attempts int, backoff time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

type CreateBookingInput struct {
	Username      string
	ItemName      string
	Email         string
	StartLocal    string
	DurationHours int
	WholeDay      bool
}

func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Reservation, error) {
	username := strings.TrimSpace(in.Username)
	itemName := strings.TrimSpace(in.ItemName)
	email := strings.TrimSpace(in.Email)
	if username == "" || itemName == "" {
		return domain.Reservation{}, domain.ErrInvalidRequest
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.Reservation{}, domain.ErrInvalidEmail
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return domain.Reservation{}, err
	}
	item, err := s.items.FindItemByName(ctx, itemName)
	if err != nil {
		return domain.Reservation{}, err
	}

	iv, err := clock.Normalize(in.StartLocal, mode(in.WholeDay), in.DurationHours, s.location)
	if err != nil {
		return domain.Reservation{}, err
	}

	now := s.clock.Now()
	reservation := domain.Reservation{
		ID:        newID(),
		UserID:    user.ID,
		ItemID:    item.ID,
		Username:  user.Username,
		ItemName:  item.Name,
		Email:     email,
		StartAt:   iv.Start,
		EndAt:     iv.End,
		CreatedAt: now,
	}

	err = s.withRetry(ctx, func() error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			// Row lock on the item serializes concurrent bookings for it.
			if _, err := s.repo.GetItemForUpdate(txCtx, item.ID); err != nil {
				return err
			}
			blocking, err := s.repo.FindConflicting(txCtx, item.ID, iv.Start, iv.End, "", now)
			if err != nil {
				return err
			}
			if blocking != nil {
				return &domain.ConflictError{Blocking: blocking.Summary()}
			}
			return s.repo.CreateReservation(txCtx, reservation)
		})
	})
	if err != nil {
		if _, ok := domain.IsConflict(err); ok && s.metrics != nil {
			s.metrics.BookingConflict()
		}
		return domain.Reservation{}, err
	}

	if s.metrics != nil {
		s.metrics.BookingCreated()
	}
	s.sendConfirmation(reservation)
	return reservation, nil
}

type CancelBookingInput struct {
	ReservationID string
	Username      string
}

// CancelResult is either a cancelled reservation or, for an ambiguous
// cancel-by-username, the full candidate set for the caller to pick from.
type CancelResult struct {
	Cancelled *domain.Reservation
	Ambiguous []domain.ReservationSummary
}

func (s *BookingService) CancelBooking(ctx context.Context, in CancelBookingInput) (CancelResult, error) {
	id := strings.TrimSpace(in.ReservationID)
	username := strings.TrimSpace(in.Username)
	if (id == "") == (username == "") {
		return CancelResult{}, domain.ErrInvalidRequest
	}

	var result CancelResult
	err := s.withRetry(ctx, func() error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			target := id
			if target == "" {
				// Cancellation by username spans active and expired
				// reservations alike.
				reservations, err := s.repo.ListByUsername(txCtx, username)
				if err != nil {
					return err
				}
				switch len(reservations) {
				case 0:
					return domain.ErrReservationNotFound
				case 1:
					target = reservations[0].ID
				default:
					summaries := make([]domain.ReservationSummary, 0, len(reservations))
					for _, r := range reservations {
						summaries = append(summaries, r.Summary())
					}
					result = CancelResult{Ambiguous: summaries}
					return nil
				}
			}

			reservation, err := s.repo.GetReservation(txCtx, target)
			if err != nil {
				return err
			}
			if reservation == nil {
				return domain.ErrReservationNotFound
			}
			removed, err := s.repo.DeleteReservation(txCtx, target)
			if err != nil {
				return err
			}
			if !removed {
				return domain.ErrReservationNotFound
			}
			result = CancelResult{Cancelled: reservation}
			return nil
		})
	})
	if err != nil {
		return CancelResult{}, err
	}

	if result.Cancelled != nil && s.metrics != nil {
		s.metrics.BookingCancelled()
	}
	return result, nil
}

type RescheduleBookingInput struct {
	ReservationID string
	ItemName      string
	StartLocal    string
	DurationHours int
	WholeDay      bool
}

// RescheduleBooking moves a reservation to a new interval, and possibly to
// a different item. On conflict the reservation is left unchanged.
func (s *BookingService) RescheduleBooking(ctx context.Context, in RescheduleBookingInput) (domain.Reservation, error) {
	id := strings.TrimSpace(in.ReservationID)
	itemName := strings.TrimSpace(in.ItemName)
	if id == "" || itemName == "" {
		return domain.Reservation{}, domain.ErrInvalidRequest
	}

	item, err := s.items.FindItemByName(ctx, itemName)
	if err != nil {
		return domain.Reservation{}, err
	}
	iv, err := clock.Normalize(in.StartLocal, mode(in.WholeDay), in.DurationHours, s.location)
	if err != nil {
		return domain.Reservation{}, err
	}

	now := s.clock.Now()
	var updated domain.Reservation

	err = s.withRetry(ctx, func() error {
		return s.repo.WithTx(ctx, func(txCtx context.Context) error {
			reservation, err := s.repo.GetReservation(txCtx, id)
			if err != nil {
				return err
			}
			if reservation == nil {
				return domain.ErrReservationNotFound
			}

			if _, err := s.repo.GetItemForUpdate(txCtx, item.ID); err != nil {
				return err
			}
			// Same predicate as Create, with the reservation excluded
			// so it never conflicts with itself.
			blocking, err := s.repo.FindConflicting(txCtx, item.ID, iv.Start, iv.End, reservation.ID, now)
			if err != nil {
				return err
			}
			if blocking != nil {
				return &domain.ConflictError{Blocking: blocking.Summary()}
			}

			if err := s.repo.UpdateReservation(txCtx, reservation.ID, item.ID, item.Name, iv.Start, iv.End); err != nil {
				return err
			}

			updated = *reservation
			updated.ItemID = item.ID
			updated.ItemName = item.Name
			updated.StartAt = iv.Start
			updated.EndAt = iv.End
			return nil
		})
	})
	if err != nil {
		if _, ok := domain.IsConflict(err); ok && s.metrics != nil {
			s.metrics.BookingConflict()
		}
		return domain.Reservation{}, err
	}

	if s.metrics != nil {
		s.metrics.BookingRescheduled()
	}
	return updated, nil
}

// ListUserBookings returns the user's reservations, active and expired,
// ordered by start time ascending. The user must exist; an unknown
// username is ErrUserNotFound, not an empty list.
func (s *BookingService) ListUserBookings(ctx context.Context, username string) ([]domain.ReservationSummary, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrInvalidRequest
	}

	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	reservations, err := s.repo.ListByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.ReservationSummary, 0, len(reservations))
	for _, r := range reservations {
		summaries = append(summaries, r.Summary())
	}
	return summaries, nil
}

// ListBookings returns every reservation in the system, active and
// expired, ascending by start time.
func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Reservation, error) {
	return s.repo.ListAll(ctx)
}

func mode(wholeDay bool) clock.Mode {
	if wholeDay {
		return clock.ModeWholeDay
	}
	return clock.ModeDuration
}

// withRetry re-runs fn on transient storage failures with doubling backoff.
// Validation and conflict errors pass through on the first occurrence.
func (s *BookingService) withRetry(ctx context.Context, fn func() error) error {
	backoff := s.retryBackoff
	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		err = fn()
		if !errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		s.logger.Warn("transient storage failure, retrying",
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (s *BookingService) sendConfirmation(r domain.Reservation) {
	if s.notifier == nil {
		return
	}
	// Fire-and-forget: the reservation is authoritative once committed,
	// whatever happens to the notification.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		err := s.notifier.BookingConfirmed(ctx, BookingNotification{
			Email:    r.Email,
			Username: r.Username,
			ItemName: r.ItemName,
			StartAt:  r.StartAt,
			EndAt:    r.EndAt,
		})
		if err != nil {
			s.logger.Warn("booking confirmation failed",
				slog.String("reservation_id", r.ID),
				slog.String("error", err.Error()),
			)
		}
	}()
}
