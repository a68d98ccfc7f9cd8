// Package vanilla renders a bound form as plain HTML with no client-side
// script. Disabled and required state come straight from the bound model, so
// every lifecycle status maps to a complete page.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	rendertemplate "github.com/goliatone/go-formstate/pkg/render/template"
	gotemplate "github.com/goliatone/go-formstate/pkg/render/template/gotemplate"
)

// Name is the registry name of the renderer.
const Name = "vanilla"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	action := options.Action
	if action == "" {
		action = form.Endpoint
	}
	method := form.Method
	if method == "" {
		method = "post"
	}
	form.Method = method

	hidden := make([]map[string]string, 0, len(options.HiddenFields))
	for _, field := range render.SortedHiddenFields(options.HiddenFields) {
		hidden = append(hidden, map[string]string{"name": field.Name, "value": field.Value})
	}

	data := map[string]any{
		"form":    form,
		"action":  action,
		"hidden":  hidden,
		"message": options.Message,
		"banner":  statusBanner(form.Status),
	}
	if cfg := options.Theme; cfg != nil {
		data["cssVars"] = cfg.CSSVars
		if cfg.AssetURL != nil {
			data["stylesheet"] = cfg.AssetURL("stylesheet")
		}
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func statusBanner(status string) string {
	switch lifecycle.Status(status) {
	case lifecycle.StatusLoading:
		return "Loading..."
	case lifecycle.StatusSubmitting:
		return "Submitting..."
	case lifecycle.StatusSuccess:
		return "Thanks, your answer was submitted."
	case lifecycle.StatusError:
		return "Submission failed. Your answers are kept, try again."
	case lifecycle.StatusLoadError:
		return "The form could not be loaded."
	default:
		return ""
	}
}
