package domain

// Item represents a single exclusive-use bookable resource.
// Availability is derived from reservations at query time, never stored.
type Item struct {
	ID   string
	Name string
}
