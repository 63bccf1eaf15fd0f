package errors

import "errors"

var (
	ErrGradeNotFound = errors.New("grade not found")

	ErrActivityNotFound = errors.New("activity not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDuplicateGrade = errors.New("grade name already exists")

	ErrDuplicateActivity = errors.New("an activity with this name already exists on this day")
)
