package budget

import "errors"

var (
	// ErrInsufficientBudget is returned by Reserve when amount exceeds available.
	ErrInsufficientBudget = errors.New("insufficient token budget")

	// ErrInvalidReservation is returned when a reservation id is unknown.
	ErrInvalidReservation = errors.New("invalid reservation id")

	// ErrReservationExceeded is returned when Consume is asked to record more
	// than the reservation's remaining (reserved - consumed) amount.
	ErrReservationExceeded = errors.New("reservation exceeded")
)
