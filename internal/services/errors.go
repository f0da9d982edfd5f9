package services

import "errors"

// ErrForbidden is returned when the acting user does not own the resource
var ErrForbidden = errors.New("you are not authorized to modify this post")

// ValidationError carries a human readable reason that is shown to the user
// as is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
