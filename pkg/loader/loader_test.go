package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

func TestCanned_ReturnsCopyOfPatch(t *testing.T) {
	l := Canned(DefaultPatch(), 0)

	first, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first[lifecycle.FieldName] = "mutated"

	second, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultPatch(), second); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
}

func TestCanned_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Canned(DefaultPatch(), time.Hour).Load(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCanned_DrivesControllerToLoaded(t *testing.T) {
	c := lifecycle.New(Canned(DefaultPatch(), 10*time.Millisecond), lifecycle.TransportFunc(func(context.Context, lifecycle.Fields) error {
		return nil
	}))
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := c.Await(ctx, func(s lifecycle.Snapshot) bool { return s.Status == lifecycle.StatusLoaded })
	if err != nil {
		t.Fatalf("await loaded: %v", err)
	}

	want := lifecycle.Snapshot{
		Fields:         lifecycle.Fields{Name: "Josh", LikesSignals: "yes"},
		Status:         lifecycle.StatusLoaded,
		FieldsEditable: true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestFile_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "form.yaml")
	jsonPath := filepath.Join(dir, "form.json")
	if err := os.WriteFile(yamlPath, []byte("name: Ada\nlikesSignals: \"no\"\n"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"name":"Grace","explanation":"sure"}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	cases := []struct {
		path string
		want lifecycle.Patch
	}{
		{path: yamlPath, want: lifecycle.Patch{lifecycle.FieldName: "Ada", lifecycle.FieldLikesSignals: "no"}},
		{path: jsonPath, want: lifecycle.Patch{lifecycle.FieldName: "Grace", lifecycle.FieldExplanation: "sure"}},
	}
	for _, tc := range cases {
		got, err := File(tc.path).Load(context.Background())
		if err != nil {
			t.Fatalf("load %s: %v", tc.path, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestFile_Errors(t *testing.T) {
	if _, err := File("").Load(context.Background()); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := File(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("age: 4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := File(path).Load(context.Background()); !errors.Is(err, lifecycle.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestHTTP_LoadsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Josh"}`))
	}))
	defer srv.Close()

	got, err := HTTP(srv.Client(), srv.URL, time.Second).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(DefaultPatch(), got); diff != "" {
		t.Fatalf("patch mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTP_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := HTTP(srv.Client(), srv.URL, 0).Load(context.Background()); err == nil {
		t.Fatalf("expected error for 503")
	}
}
