package vanilla

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func boundForm(t *testing.T, events ...lifecycle.Event) model.FormModel {
	t.Helper()
	s, err := schema.Load(context.Background())
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	snap := lifecycle.NewSnapshot()
	for _, e := range events {
		snap, err = lifecycle.Reduce(snap, e)
		if err != nil {
			t.Fatalf("reduce %s: %v", e.EventName(), err)
		}
	}
	return model.Bind(s.FormModel(), snap)
}

func renderForm(t *testing.T, form model.FormModel, opts render.RenderOptions) string {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRender_LoadingDisablesEveryControl(t *testing.T) {
	html := renderForm(t, boundForm(t), render.RenderOptions{})

	for _, want := range []string{
		`data-status="loading"`,
		`aria-busy="true"`,
		`<select id="field-likesSignals" name="likesSignals" disabled>`,
		`<button type="submit" disabled>`,
		"Loading...",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
	if strings.Contains(html, "required") {
		t.Fatalf("nothing should be required while likesSignals is yes:\n%s", html)
	}
}

func TestRender_ExplanationRequiredAfterNo(t *testing.T) {
	form := boundForm(t,
		lifecycle.LoadCompleted{Data: lifecycle.Patch{lifecycle.FieldName: "Josh"}},
		lifecycle.FieldChanged{Field: lifecycle.FieldLikesSignals, Value: lifecycle.LikesSignalsNo},
	)
	html := renderForm(t, form, render.RenderOptions{
		HiddenFields: map[string]string{"_csrf": "abc"},
	})

	for _, want := range []string{
		`data-status="loaded"`,
		`value="Josh"`,
		`<option value="no" selected>no</option>`,
		`<textarea id="field-explanation" name="explanation" placeholder="explain yourself..." required aria-required="true" aria-invalid="true">`,
		`<p class="formstate__error">explanation is required</p>`,
		`<input type="hidden" name="_csrf" value="abc">`,
		`action="/someapi"`,
		`method="post"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
	if strings.Contains(html, "aria-busy") {
		t.Fatalf("loaded form must not be busy")
	}
}

func TestRender_EscapesValuesAndAppliesTheme(t *testing.T) {
	form := boundForm(t,
		lifecycle.LoadCompleted{},
		lifecycle.FieldChanged{Field: lifecycle.FieldName, Value: `<script>alert(1)</script>`},
	)
	cfg, err := render.ResolveTheme(render.StaticSelector{Manifest: render.DefaultManifest()}, "", "")
	if err != nil {
		t.Fatalf("resolve theme: %v", err)
	}
	html := renderForm(t, form, render.RenderOptions{Theme: cfg, Action: "/submit", Message: "try again"})

	if strings.Contains(html, "<script>") {
		t.Fatalf("field value not escaped:\n%s", html)
	}
	for _, want := range []string{
		"--color-accent: #2f6fde;",
		`<link rel="stylesheet" href="/assets/formstate.css">`,
		`action="/submit"`,
		"try again",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestStatusBanner(t *testing.T) {
	for _, status := range []lifecycle.Status{
		lifecycle.StatusLoading, lifecycle.StatusSubmitting, lifecycle.StatusSuccess,
		lifecycle.StatusError, lifecycle.StatusLoadError,
	} {
		if statusBanner(status.String()) == "" {
			t.Fatalf("missing banner for %s", status)
		}
	}
	if statusBanner(lifecycle.StatusLoaded.String()) != "" {
		t.Fatalf("loaded form has no banner")
	}
}

func TestAssetsFS(t *testing.T) {
	f, err := AssetsFS().Open(StylesheetName)
	if err != nil {
		t.Fatalf("open stylesheet: %v", err)
	}
	_ = f.Close()
}
