package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
)

// DefaultOperationID is the submit operation declared in the bundled
// document.
const DefaultOperationID = "submitSignalsForm"

//go:embed openapi.yaml
var bundled []byte

// Document returns the raw bundled OpenAPI document.
func Document() []byte {
	return append([]byte(nil), bundled...)
}

// Schema wraps the request body schema of the submit operation.
type Schema struct {
	operationID string
	method      string
	path        string
	summary     string
	description string
	body        *openapi3.Schema
}

// Load parses the bundled document.
func Load(ctx context.Context) (*Schema, error) {
	return Parse(ctx, bundled, DefaultOperationID)
}

// Parse loads raw with kin-openapi, validates it, and extracts the JSON
// request schema of operationID.
func Parse(ctx context.Context, raw []byte, operationID string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("schema: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("schema: document does not contain any paths")
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID != operationID {
				continue
			}
			body, err := requestSchema(op.RequestBody)
			if err != nil {
				return nil, fmt.Errorf("schema: operation %q: %w", operationID, err)
			}
			return &Schema{
				operationID: operationID,
				method:      strings.ToUpper(method),
				path:        path,
				summary:     op.Summary,
				description: op.Description,
				body:        body,
			}, nil
		}
	}
	return nil, fmt.Errorf("schema: operation %q not found", operationID)
}

func requestSchema(requestBody *openapi3.RequestBodyRef) (*openapi3.Schema, error) {
	if requestBody == nil || requestBody.Value == nil {
		return nil, errors.New("request body is missing")
	}
	mt, ok := requestBody.Value.Content["application/json"]
	if !ok || mt == nil || mt.Schema == nil || mt.Schema.Value == nil {
		return nil, errors.New("application/json request schema is missing")
	}
	return mt.Schema.Value, nil
}

// OperationID reports the submit operation identifier.
func (s *Schema) OperationID() string { return s.operationID }

// Method reports the HTTP method of the submit operation.
func (s *Schema) Method() string { return s.method }

// Path reports the submit endpoint path, e.g. "/someapi".
func (s *Schema) Path() string { return s.path }

// Validate checks fields against the request schema. Conditional rules the
// schema cannot express (explanation required when likesSignals is "no") are
// not checked here; see lifecycle.Snapshot.Errors.
func (s *Schema) Validate(fields lifecycle.Fields) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return s.ValidateJSON(raw)
}

// ValidateJSON checks a raw JSON payload against the request schema.
func (s *Schema) ValidateJSON(raw []byte) error {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("schema: decode payload: %w", err)
	}
	if err := s.body.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// FormModel builds the renderer model in lifecycle field order.
func (s *Schema) FormModel() model.FormModel {
	form := model.FormModel{
		OperationID: s.operationID,
		Endpoint:    s.path,
		Method:      s.method,
		Summary:     s.summary,
		Description: s.description,
	}

	for _, key := range lifecycle.FieldKeys() {
		name := string(key)
		ref := s.body.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		form.Fields = append(form.Fields, buildField(name, ref.Value))
	}
	return form
}

func buildField(name string, prop *openapi3.Schema) model.Field {
	field := model.Field{
		Name:        name,
		Type:        model.FieldTypeString,
		Format:      prop.Format,
		Label:       strings.TrimSpace(prop.Title),
		Description: prop.Description,
		Default:     prop.Default,
	}
	if prop.Type != nil && prop.Type.Is(openapi3.TypeBoolean) {
		field.Type = model.FieldTypeBoolean
	}
	if field.Label == "" {
		field.Label = model.DefaultLabeler(name)
	}
	if placeholder, ok := prop.Extensions["x-placeholder"].(string); ok {
		field.Placeholder = placeholder
	}
	if len(prop.Enum) > 0 {
		field.Enum = append([]any(nil), prop.Enum...)
		field.UIHints = map[string]string{model.HintInput: model.HintInputSelect}
	}
	if prop.Format == model.HintTextarea {
		field.UIHints = map[string]string{model.HintInput: model.HintTextarea}
	}
	if prop.MinLength > 0 {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMinLength,
			Params: map[string]string{"value": strconv.FormatUint(prop.MinLength, 10)},
		})
	}
	if prop.MaxLength != nil {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRuleMaxLength,
			Params: map[string]string{"value": strconv.FormatUint(*prop.MaxLength, 10)},
		})
	}
	if prop.Pattern != "" {
		field.Validations = append(field.Validations, model.ValidationRule{
			Kind:   model.ValidationRulePattern,
			Params: map[string]string{"pattern": prop.Pattern},
		})
	}
	return field
}
