package lifecycle

import (
	"fmt"
	"strings"
)

// Status is the progress indicator for the load/submit cycle.
type Status string

const (
	// StatusLoading is the initial state; fields are disabled.
	StatusLoading Status = "loading"
	// StatusLoaded means remote data has been merged and fields are editable.
	StatusLoaded Status = "loaded"
	// StatusSubmitting means a submit request is in flight.
	StatusSubmitting Status = "submitting"
	// StatusSuccess means the last submit was accepted.
	StatusSuccess Status = "success"
	// StatusError means the last submit was rejected.
	StatusError Status = "error"
	// StatusLoadError means the loader failed; fields stay disabled until a
	// reload succeeds.
	StatusLoadError Status = "loadError"
)

// allowedTransitions lists the permitted status changes.
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusLoading: {
		StatusLoaded:    {},
		StatusLoadError: {},
	},
	StatusLoadError: {
		StatusLoading: {},
	},
	StatusLoaded: {
		StatusSubmitting: {},
	},
	StatusSubmitting: {
		StatusSubmitting: {},
		StatusSuccess:    {},
		StatusError:      {},
	},
	StatusSuccess: {
		StatusSubmitting: {},
	},
	StatusError: {
		StatusSubmitting: {},
	},
}

// ParseStatus resolves a raw status name.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if _, ok := allowedTransitions[status]; !ok {
		return "", fmt.Errorf("lifecycle: unknown status %q", raw)
	}
	return status, nil
}

func (s Status) String() string {
	return string(s)
}

// Editable reports whether fields accept edits while in this status.
func (s Status) Editable() bool {
	switch s {
	case StatusLoaded, StatusSubmitting, StatusSuccess, StatusError:
		return true
	default:
		return false
	}
}

// Settled reports whether the status reflects a finished submit.
func (s Status) Settled() bool {
	return s == StatusSuccess || s == StatusError
}

// CanTransition reports whether from -> to is a permitted status change.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}
