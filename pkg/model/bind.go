package model

import (
	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// Bind returns a copy of form carrying the values, editability, required
// flags and validation errors of snap. Fields outside the lifecycle field set
// keep their schema defaults.
func Bind(form FormModel, snap lifecycle.Snapshot) FormModel {
	out := form
	out.Fields = make([]Field, len(form.Fields))
	out.Status = snap.Status.String()
	out.Disabled = !snap.FieldsEditable
	out.Valid = snap.Valid()

	for i, field := range form.Fields {
		bound := field
		bound.Validations = append([]ValidationRule(nil), field.Validations...)
		bound.Disabled = !snap.FieldsEditable

		key, err := lifecycle.ParseFieldKey(field.Name)
		if err == nil {
			if value, getErr := snap.Fields.Get(key); getErr == nil {
				bound.Value = value
			}
			if snap.Required(key) {
				bound.Required = true
				bound.Validations = appendRequired(bound.Validations)
			}
			bound.Errors = append([]string(nil), snap.ErrorsFor(key)...)
		}
		out.Fields[i] = bound
	}
	return out
}

func appendRequired(rules []ValidationRule) []ValidationRule {
	for _, rule := range rules {
		if rule.Kind == ValidationRuleRequired {
			return rules
		}
	}
	return append(rules, ValidationRule{Kind: ValidationRuleRequired})
}
