package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when an event is not allowed in the
	// current status. The snapshot is left unchanged.
	ErrInvalidTransition = errors.New("lifecycle: invalid transition")
	// ErrUnknownField signals a field key outside the fixed field set.
	ErrUnknownField = errors.New("lifecycle: unknown field")
	// ErrInvalidValue signals a value outside a field's allowed options.
	ErrInvalidValue = errors.New("lifecycle: invalid field value")
	// ErrFieldsDisabled is returned for edits while fields are not editable.
	ErrFieldsDisabled = errors.New("lifecycle: fields are disabled")
	// ErrDisposed is returned by operations on a disposed controller.
	ErrDisposed = errors.New("lifecycle: controller disposed")
	// ErrInvalidForm is returned by Submit when the submit guard is enabled
	// and the current values fail validation.
	ErrInvalidForm = errors.New("lifecycle: form is invalid")
	// ErrNotStarted is returned when the controller has not been started.
	ErrNotStarted = errors.New("lifecycle: controller not started")
)
