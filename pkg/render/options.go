package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that is not part of the form model.
type RenderOptions struct {
	// Action overrides the form endpoint. Renderers fall back to the model's
	// Endpoint when empty.
	Action string
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
	// Message is an optional banner shown above the fields, for example the
	// last submit error.
	Message string
	// Theme carries the resolved theme tokens and CSS variables.
	Theme *theme.RendererConfig
}
