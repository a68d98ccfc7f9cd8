package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrLoadFailed is returned when the form could not be loaded and the
	// user declined to retry.
	ErrLoadFailed = errors.New("tui: form could not be loaded")
)
