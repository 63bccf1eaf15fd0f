package errors

import "errors"

var (
	ErrNotFound = errors.New("student profile not found")

	ErrInvalidID = errors.New("invalid student ID format")

	ErrDuplicateAccount = errors.New("account already has a student profile")
)
