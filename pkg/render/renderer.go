package render

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Renderer converts a bound FormModel into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form model.FormModel, options RenderOptions) ([]byte, error)
}
