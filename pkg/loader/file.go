package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// File returns a loader that reads a YAML or JSON fixture holding a flat
// mapping of field values, for example:
//
//	name: Josh
//	likesSignals: "no"
func File(path string) lifecycle.DataLoader {
	return fileLoader{path: path}
}

type fileLoader struct {
	path string
}

func (l fileLoader) Load(ctx context.Context) (lifecycle.Patch, error) {
	if l.path == "" {
		return nil, errors.New("loader: file path is required")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	abs, err := filepath.Abs(l.path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read fixture: %w", err)
	}
	return decodePatch(data)
}

// decodePatch accepts YAML and, since JSON is valid YAML, JSON payloads.
func decodePatch(data []byte) (lifecycle.Patch, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("loader: decode payload: %w", err)
	}
	patch, err := lifecycle.ParsePatch(raw)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return patch, nil
}
