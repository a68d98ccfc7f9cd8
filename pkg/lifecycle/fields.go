package lifecycle

import (
	"fmt"
	"sort"
	"strings"
)

// FieldKey identifies one of the fixed form fields.
type FieldKey string

const (
	FieldName         FieldKey = "name"
	FieldLikesSignals FieldKey = "likesSignals"
	FieldExplanation  FieldKey = "explanation"
)

const (
	LikesSignalsYes = "yes"
	LikesSignalsNo  = "no"
)

// FieldKeys lists every field in render order.
func FieldKeys() []FieldKey {
	return []FieldKey{FieldName, FieldLikesSignals, FieldExplanation}
}

// ParseFieldKey resolves a raw key into a FieldKey.
func ParseFieldKey(raw string) (FieldKey, error) {
	key := FieldKey(strings.TrimSpace(raw))
	switch key {
	case FieldName, FieldLikesSignals, FieldExplanation:
		return key, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
}

// Fields holds the current form values. The JSON shape is the flat mapping
// sent on submit.
type Fields struct {
	Name         string `json:"name" yaml:"name"`
	LikesSignals string `json:"likesSignals" yaml:"likesSignals"`
	Explanation  string `json:"explanation" yaml:"explanation"`
}

// DefaultFields returns the values a form starts with before loading.
func DefaultFields() Fields {
	return Fields{LikesSignals: LikesSignalsYes}
}

// Get returns the value stored under key.
func (f Fields) Get(key FieldKey) (string, error) {
	switch key {
	case FieldName:
		return f.Name, nil
	case FieldLikesSignals:
		return f.LikesSignals, nil
	case FieldExplanation:
		return f.Explanation, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
}

// Set returns a copy of f with key set to value.
func (f Fields) Set(key FieldKey, value string) (Fields, error) {
	switch key {
	case FieldName:
		f.Name = value
	case FieldLikesSignals:
		if err := validLikesSignals(value); err != nil {
			return f, err
		}
		f.LikesSignals = value
	case FieldExplanation:
		f.Explanation = value
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return f, nil
}

func validLikesSignals(value string) error {
	if value == LikesSignalsYes || value == LikesSignalsNo {
		return nil
	}
	return fmt.Errorf("%w: likesSignals must be %q or %q, got %q", ErrInvalidValue, LikesSignalsYes, LikesSignalsNo, value)
}

// Merge applies a partial update. Keys missing from the patch keep their
// current values. The patch is applied all or nothing.
func (f Fields) Merge(patch Patch) (Fields, error) {
	next := f
	for _, key := range patch.Keys() {
		var err error
		if next, err = next.Set(key, patch[key]); err != nil {
			return f, err
		}
	}
	if len(patch.Keys()) != len(patch) {
		return f, fmt.Errorf("%w in patch", ErrUnknownField)
	}
	return next, nil
}

// Map returns the raw value mapping, including values of disabled fields.
func (f Fields) Map() map[string]string {
	return map[string]string{
		string(FieldName):         f.Name,
		string(FieldLikesSignals): f.LikesSignals,
		string(FieldExplanation):  f.Explanation,
	}
}

// Patch is a partial set of field values, as produced by a DataLoader.
type Patch map[FieldKey]string

// ParsePatch converts a loosely typed payload into a Patch. Unknown keys and
// non-scalar values are rejected.
func ParsePatch(raw map[string]any) (Patch, error) {
	if len(raw) == 0 {
		return Patch{}, nil
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	patch := make(Patch, len(raw))
	for _, rawKey := range keys {
		key, err := ParseFieldKey(rawKey)
		if err != nil {
			return nil, err
		}
		switch value := raw[rawKey].(type) {
		case nil:
			patch[key] = ""
		case string:
			patch[key] = value
		case bool, int, int64, float64:
			patch[key] = fmt.Sprint(value)
		default:
			return nil, fmt.Errorf("lifecycle: field %q: unsupported value type %T", rawKey, value)
		}
	}
	return patch, nil
}

// Keys returns the patch keys in a stable order.
func (p Patch) Keys() []FieldKey {
	out := make([]FieldKey, 0, len(p))
	for _, key := range FieldKeys() {
		if _, ok := p[key]; ok {
			out = append(out, key)
		}
	}
	return out
}
