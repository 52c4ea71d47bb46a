package activity

import "errors"

var (
	ErrActivityNotFound    = errors.New("activity not found")
	ErrActivityNotBookable = errors.New("activity is not open for booking")
	ErrInsufficientSlots   = errors.New("not enough available slots")
	ErrInvalidDates        = errors.New("end date must not be before start date")
	ErrNotOwner            = errors.New("actor does not own this activity")
	ErrStatusLocked        = errors.New("activity status does not allow this action")
)
