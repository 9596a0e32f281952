package services

import "errors"

var (
	// ErrNotFound is returned when a user, task or live session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)
