package domain

import "time"

// User is a principal who can hold reservations. Username and email are
// each globally unique (case-insensitive). The credential hash is opaque
// to the booking engine.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
