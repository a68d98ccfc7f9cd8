package lifecycle

import "fmt"

// Event is an input to Reduce.
type Event interface {
	EventName() string
}

// Started is emitted once when the controller begins loading so observers see
// the initial status.
type Started struct{}

// LoadCompleted carries the data returned by a DataLoader.
type LoadCompleted struct {
	Data Patch
}

// LoadFailed reports a DataLoader error.
type LoadFailed struct {
	Err error
}

// ReloadRequested restarts loading after a load failure.
type ReloadRequested struct{}

// FieldChanged is a single user edit.
type FieldChanged struct {
	Field FieldKey
	Value string
}

// SubmitRequested marks the start of a submit.
type SubmitRequested struct{}

// SubmitSucceeded reports an accepted submit.
type SubmitSucceeded struct{}

// SubmitFailed reports a rejected submit.
type SubmitFailed struct {
	Err error
}

func (Started) EventName() string         { return "started" }
func (LoadCompleted) EventName() string   { return "load_completed" }
func (LoadFailed) EventName() string      { return "load_failed" }
func (ReloadRequested) EventName() string { return "reload_requested" }
func (FieldChanged) EventName() string    { return "field_changed" }
func (SubmitRequested) EventName() string { return "submit_requested" }
func (SubmitSucceeded) EventName() string { return "submit_succeeded" }
func (SubmitFailed) EventName() string    { return "submit_failed" }

// Reduce applies e to s and returns the next snapshot. It has no side
// effects. Events that are not allowed in the current status return the
// unchanged snapshot and an error wrapping ErrInvalidTransition or
// ErrFieldsDisabled.
func Reduce(s Snapshot, e Event) (Snapshot, error) {
	switch ev := e.(type) {
	case Started:
		if s.Status != StatusLoading {
			return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e.EventName(), s.Status)
		}
	case LoadCompleted:
		if err := guard(s, StatusLoaded, e); err != nil {
			return s, err
		}
		fields, err := s.Fields.Merge(ev.Data)
		if err != nil {
			return s, err
		}
		s.Fields = fields
		s.Status = StatusLoaded
	case LoadFailed:
		if err := guard(s, StatusLoadError, e); err != nil {
			return s, err
		}
		s.Status = StatusLoadError
	case ReloadRequested:
		if err := guard(s, StatusLoading, e); err != nil {
			return s, err
		}
		s.Status = StatusLoading
	case FieldChanged:
		if !s.Status.Editable() {
			return s, fmt.Errorf("%w: status %s", ErrFieldsDisabled, s.Status)
		}
		fields, err := s.Fields.Set(ev.Field, ev.Value)
		if err != nil {
			return s, err
		}
		s.Fields = fields
	case SubmitRequested:
		if err := guard(s, StatusSubmitting, e); err != nil {
			return s, err
		}
		s.Status = StatusSubmitting
	case SubmitSucceeded:
		if err := guard(s, StatusSuccess, e); err != nil {
			return s, err
		}
		s.Status = StatusSuccess
	case SubmitFailed:
		if err := guard(s, StatusError, e); err != nil {
			return s, err
		}
		s.Status = StatusError
	case nil:
		return s, fmt.Errorf("lifecycle: event is nil")
	default:
		return s, fmt.Errorf("lifecycle: unsupported event %T", e)
	}
	return derive(s), nil
}

func guard(s Snapshot, to Status, e Event) error {
	if CanTransition(s.Status, to) {
		return nil
	}
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, e.EventName(), s.Status)
}
