package lifecycle

import "strings"

// MessageExplanationRequired is the validation message attached to the
// explanation field when it is required but empty.
const MessageExplanationRequired = "explanation is required"

// Snapshot is the state of a form at one point in time. FieldsEditable,
// ExplanationRequired and Errors are derived from Fields and Status and are
// recomputed after every event.
type Snapshot struct {
	Fields              Fields                `json:"fields"`
	Status              Status                `json:"status"`
	FieldsEditable      bool                  `json:"fieldsEditable"`
	ExplanationRequired bool                  `json:"explanationRequired"`
	Errors              map[FieldKey][]string `json:"errors,omitempty"`
}

// NewSnapshot returns the snapshot a controller starts from: default values,
// status loading, fields disabled.
func NewSnapshot() Snapshot {
	return derive(Snapshot{
		Fields: DefaultFields(),
		Status: StatusLoading,
	})
}

// Valid reports whether the current values pass field validation.
func (s Snapshot) Valid() bool {
	return len(s.Errors) == 0
}

// ErrorsFor returns the validation messages attached to key.
func (s Snapshot) ErrorsFor(key FieldKey) []string {
	if len(s.Errors) == 0 {
		return nil
	}
	return s.Errors[key]
}

// Required reports whether key must be filled in.
func (s Snapshot) Required(key FieldKey) bool {
	return key == FieldExplanation && s.ExplanationRequired
}

func derive(s Snapshot) Snapshot {
	s.FieldsEditable = s.Status.Editable()
	s.ExplanationRequired = s.Fields.ExplanationRequired()
	s.Errors = s.Fields.Validate()
	return s
}

// ExplanationRequired reports whether the explanation must be filled in,
// which depends only on the current likesSignals value.
func (f Fields) ExplanationRequired() bool {
	return f.LikesSignals == LikesSignalsNo
}

// Validate returns field-level validation messages, or nil when the values
// are valid.
func (f Fields) Validate() map[FieldKey][]string {
	if f.ExplanationRequired() && strings.TrimSpace(f.Explanation) == "" {
		return map[FieldKey][]string{
			FieldExplanation: {MessageExplanationRequired},
		}
	}
	return nil
}
