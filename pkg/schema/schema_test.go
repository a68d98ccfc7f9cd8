package schema

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
)

func TestLoad_BundledDocument(t *testing.T) {
	s, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.OperationID() != DefaultOperationID || s.Method() != "POST" || s.Path() != "/someapi" {
		t.Fatalf("unexpected operation %s %s %s", s.OperationID(), s.Method(), s.Path())
	}

	form := s.FormModel()
	var names []string
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"name", "likesSignals", "explanation"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	likes, _ := form.Field("likesSignals")
	if diff := cmp.Diff([]string{"yes", "no"}, likes.EnumStrings()); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if likes.UIHints[model.HintInput] != model.HintInputSelect {
		t.Fatalf("expected select hint, got %v", likes.UIHints)
	}

	explanation, _ := form.Field("explanation")
	if explanation.UIHints[model.HintInput] != model.HintTextarea {
		t.Fatalf("expected textarea hint, got %v", explanation.UIHints)
	}
	if explanation.Placeholder != "explain yourself..." {
		t.Fatalf("unexpected placeholder %q", explanation.Placeholder)
	}
	if explanation.Required {
		t.Fatalf("explanation is only conditionally required")
	}
}

func TestValidate(t *testing.T) {
	s, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.Validate(lifecycle.Fields{Name: "Josh", LikesSignals: "yes"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	if err := s.Validate(lifecycle.Fields{Name: "Josh", LikesSignals: "maybe"}); err == nil {
		t.Fatalf("expected enum violation")
	}
	if err := s.ValidateJSON([]byte(`{"name":"Josh","likesSignals":"yes"}`)); err == nil {
		t.Fatalf("expected missing explanation to be rejected")
	}
	if err := s.ValidateJSON([]byte(`{"name":"Josh","likesSignals":"yes","explanation":"","extra":1}`)); err == nil {
		t.Fatalf("expected additional property to be rejected")
	}
	if err := s.ValidateJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestParse_UnknownOperation(t *testing.T) {
	if _, err := Parse(context.Background(), Document(), "missing"); err == nil {
		t.Fatalf("expected error for unknown operation")
	}
	if _, err := Parse(context.Background(), nil, DefaultOperationID); err == nil {
		t.Fatalf("expected error for empty document")
	}
}
