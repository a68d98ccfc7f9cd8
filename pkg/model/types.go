package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
)

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
)

// UI hint keys understood by the bundled renderers.
const (
	HintInput       = "input"
	HintInputSelect = "select"
	HintTextarea    = "textarea"
)

// ValidationRule represents a single validation constraint applied to a field.
// Length limits encode their threshold in Params["value"] while pattern rules
// keep the expression in Params["pattern"]. Required rules carry no params.
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Field models an individual input. The schema half (name, type, labels,
// options, rules) comes from the form definition; Value, Disabled and Errors
// are filled in by Bind from the current lifecycle snapshot.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`

	Value    string   `json:"value"`
	Disabled bool     `json:"disabled"`
	Errors   []string `json:"errors,omitempty"`
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	Status   string `json:"status,omitempty"`
	Disabled bool   `json:"disabled"`
	Valid    bool   `json:"valid"`
}

// Field returns the field called name.
func (f FormModel) Field(name string) (Field, bool) {
	for _, field := range f.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// EnumStrings returns the enum options rendered as strings.
func (f Field) EnumStrings() []string {
	if len(f.Enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(f.Enum))
	for _, option := range f.Enum {
		if s, ok := option.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
