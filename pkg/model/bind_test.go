package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

func sampleForm() FormModel {
	return FormModel{
		OperationID: "submitSignalsForm",
		Endpoint:    "/someapi",
		Method:      "POST",
		Fields: []Field{
			{Name: "name", Type: FieldTypeString, Label: "Name"},
			{Name: "likesSignals", Type: FieldTypeString, Label: "Likes Signals", Enum: []any{"yes", "no"}},
			{Name: "explanation", Type: FieldTypeString, Label: "Explanation", UIHints: map[string]string{HintInput: HintTextarea}},
		},
	}
}

func TestBind_LoadingDisablesEverything(t *testing.T) {
	bound := Bind(sampleForm(), lifecycle.NewSnapshot())

	if !bound.Disabled || bound.Status != "loading" {
		t.Fatalf("expected disabled loading form, got disabled=%v status=%s", bound.Disabled, bound.Status)
	}
	for _, field := range bound.Fields {
		if !field.Disabled {
			t.Fatalf("field %s should be disabled while loading", field.Name)
		}
	}
	likes, _ := bound.Field("likesSignals")
	if likes.Value != "yes" {
		t.Fatalf("expected default likesSignals=yes, got %q", likes.Value)
	}
}

func TestBind_ExplanationRequired(t *testing.T) {
	snap, err := lifecycle.Reduce(lifecycle.NewSnapshot(), lifecycle.LoadCompleted{Data: lifecycle.Patch{lifecycle.FieldName: "Josh"}})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	snap, err = lifecycle.Reduce(snap, lifecycle.FieldChanged{Field: lifecycle.FieldLikesSignals, Value: "no"})
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}

	form := sampleForm()
	bound := Bind(form, snap)

	explanation, ok := bound.Field("explanation")
	if !ok {
		t.Fatalf("explanation field missing")
	}
	want := Field{
		Name:        "explanation",
		Type:        FieldTypeString,
		Label:       "Explanation",
		Required:    true,
		UIHints:     map[string]string{HintInput: HintTextarea},
		Validations: []ValidationRule{{Kind: ValidationRuleRequired}},
		Errors:      []string{lifecycle.MessageExplanationRequired},
	}
	if diff := cmp.Diff(want, explanation); diff != "" {
		t.Fatalf("bound field mismatch (-want +got):\n%s", diff)
	}
	if bound.Valid {
		t.Fatalf("form should be invalid")
	}

	if form.Fields[2].Required || len(form.Fields[2].Validations) != 0 {
		t.Fatalf("Bind mutated the source form")
	}

	name, _ := bound.Field("name")
	if name.Value != "Josh" || name.Disabled {
		t.Fatalf("unexpected name field %+v", name)
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"likesSignals": "Likes Signals",
		"explanation":  "Explanation",
		"first_name":   "First Name",
		"":             "",
	}
	for input, want := range cases {
		if got := DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
