package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
)

// SummaryName is the registry name of the plain-text summary renderer.
const SummaryName = "summary"

// Summary renders a bound form as aligned plain text, one field per line.
type Summary struct{}

var _ render.Renderer = Summary{}

func (Summary) Name() string        { return SummaryName }
func (Summary) ContentType() string { return "text/plain; charset=utf-8" }

func (Summary) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	width := len("status")
	for _, field := range form.Fields {
		if len(field.Label) > width {
			width = len(field.Label)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %s\n", width, "status", form.Status)
	for _, field := range form.Fields {
		value := field.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "%-*s  %s", width, field.Label, value)
		if len(field.Errors) > 0 {
			fmt.Fprintf(&b, "  (%s)", strings.Join(field.Errors, "; "))
		}
		b.WriteByte('\n')
	}
	if options.Message != "" {
		b.WriteString(options.Message)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}
