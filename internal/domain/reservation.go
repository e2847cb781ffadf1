package domain

import "time"

// Reservation is a claim on an item for a half-open UTC interval
// [StartAt, EndAt). Username, ItemName and Email are snapshots taken at
// creation time so history survives later renames.
type Reservation struct {
	ID        string
	UserID    string
	ItemID    string
	Username  string
	ItemName  string
	Email     string
	StartAt   time.Time
	EndAt     time.Time
	CreatedAt time.Time
}

// Active reports whether the reservation still participates in conflict
// checks at the given instant. A reservation past its end stays stored
// for history but never blocks a new booking.
func (r Reservation) Active(now time.Time) bool {
	return r.EndAt.After(now)
}

// Covers reports whether the instant falls inside [StartAt, EndAt).
func (r Reservation) Covers(at time.Time) bool {
	return !r.StartAt.After(at) && at.Before(r.EndAt)
}

// Overlaps reports whether the half-open interval [start, end) intersects
// the reservation's interval. Back-to-back intervals do not overlap.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartAt.Before(end) && start.Before(r.EndAt)
}

// ReservationSummary is the projection returned by listings and carried
// by conflict and ambiguous-cancel responses.
type ReservationSummary struct {
	ID       string
	ItemName string
	StartAt  time.Time
	EndAt    time.Time
}

// Summary projects the reservation for caller display.
func (r Reservation) Summary() ReservationSummary {
	return ReservationSummary{
		ID:       r.ID,
		ItemName: r.ItemName,
		StartAt:  r.StartAt,
		EndAt:    r.EndAt,
	}
}
