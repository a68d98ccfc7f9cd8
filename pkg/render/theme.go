package render

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ResolveTheme asks selector for the named theme and flattens the selection
// into a renderer config. Variant tokens override the manifest tokens and
// every token is exposed as a CSS variable named --<token>. A nil selector
// yields a nil config.
func ResolveTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("render: select theme %q: %w", name, err)
	}
	if selection == nil {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}

	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}
	manifest := selection.Manifest
	if manifest == nil {
		return cfg, nil
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	partials := make(map[string]string, len(manifest.Templates))
	for key, value := range manifest.Templates {
		partials[key] = value
	}
	if v, ok := manifest.Variants[selection.Variant]; ok {
		for key, value := range v.Tokens {
			tokens[key] = value
		}
		for key, value := range v.Templates {
			partials[key] = value
		}
	}

	cfg.Tokens = tokens
	cfg.Partials = partials
	cfg.CSSVars = cssVars(tokens)
	prefix := strings.TrimRight(manifest.Assets.Prefix, "/")
	cfg.AssetURL = func(key string) string {
		file, ok := manifest.Assets.Files[key]
		if !ok {
			return ""
		}
		if prefix == "" {
			return file
		}
		return prefix + "/" + strings.TrimLeft(file, "/")
	}
	return cfg, nil
}

func cssVars(tokens map[string]string) map[string]string {
	if len(tokens) == 0 {
		return nil
	}
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		out[name] = value
	}
	return out
}

// StaticSelector serves a single in-memory manifest.
type StaticSelector struct {
	Manifest *theme.Manifest
}

var _ theme.ThemeSelector = StaticSelector{}

// Select implements theme.ThemeSelector. An empty name selects the manifest;
// unknown variants fall back to the base tokens.
func (s StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if s.Manifest == nil {
		return nil, fmt.Errorf("render: no theme manifest configured")
	}
	if name != "" && name != s.Manifest.Name {
		return nil, fmt.Errorf("render: unknown theme %q", name)
	}
	if _, ok := s.Manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{
		Theme:    s.Manifest.Name,
		Variant:  variant,
		Manifest: s.Manifest,
	}, nil
}

// DefaultManifest is the built-in theme used by the formstate server.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "formstate",
		Version: "1.0.0",
		Tokens: map[string]string{
			"color-accent":  "#2f6fde",
			"color-danger":  "#c0392b",
			"color-success": "#1e8449",
			"color-text":    "#1d1d1f",
			"color-surface": "#ffffff",
			"radius":        "6px",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "formstate.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"color-text":    "#f2f2f7",
					"color-surface": "#1c1c1e",
				},
			},
		},
	}
}
