package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmitDeclined is returned when a rejected submission is not
	// corrected.
	ErrSubmitDeclined = errors.New("tui: submission has invalid fields")
	// ErrUnanswerable is returned when the only invalid fields have a broken
	// definition, such as an invalid pattern or a missing match field.
	ErrUnanswerable = errors.New("tui: fields cannot be answered")
	// ErrNoChoices is returned when a driver picks an option index that does
	// not exist.
	ErrNoChoices = errors.New("tui: option index out of range")
)
