package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidInterval     = errors.New("invalid time interval")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidID           = errors.New("invalid id")
	ErrUnavailable         = errors.New("storage temporarily unavailable")

	ErrItemNameRequired  = errors.New("item name required")
	ErrItemAlreadyExists = errors.New("item already exists")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidEmail      = errors.New("valid email is required")
)

// ConflictError reports an overlap with an existing active reservation and
// carries the blocking reservation so callers can display it.
type ConflictError struct {
	Blocking ReservationSummary
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item %q is already booked from %s to %s",
		e.Blocking.ItemName,
		e.Blocking.StartAt.Format("2006-01-02 15:04"),
		e.Blocking.EndAt.Format("2006-01-02 15:04"),
	)
}

// IsConflict reports whether err is a booking conflict and returns it.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
