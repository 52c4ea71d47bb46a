package booking

import "errors"

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingNotCancelable = errors.New("booking can no longer be canceled")
	ErrUnauthorized         = errors.New("not allowed to act on this booking")
	ErrInvalidPeople        = errors.New("number of people must be between 1 and 50")
)
