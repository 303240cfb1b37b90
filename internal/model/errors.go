package model

import "errors"

var (
	// ErrNotFound means no record exists for the identifier.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the record belongs to a different identity.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a user-correctable input problem. MessageID names the
// translation shown to the user.
type ValidationError struct {
	Field     string
	MessageID string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.MessageID
}
