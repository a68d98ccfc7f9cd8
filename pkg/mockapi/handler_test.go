package mockapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func newHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	s, err := schema.Load(context.Background())
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return New(s, opts...)
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/someapi", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_FailureModes(t *testing.T) {
	valid := `{"name":"Josh","likesSignals":"yes","explanation":""}`
	incomplete := `{"name":"Josh","likesSignals":"no","explanation":""}`

	cases := []struct {
		name string
		mode FailureMode
		body string
		want int
	}{
		{name: "never accepts", mode: FailNever, body: valid, want: http.StatusNoContent},
		{name: "never accepts incomplete", mode: FailNever, body: incomplete, want: http.StatusNoContent},
		{name: "always rejects", mode: FailAlways, body: valid, want: http.StatusInternalServerError},
		{name: "invalid accepts valid", mode: FailInvalid, body: valid, want: http.StatusNoContent},
		{name: "invalid rejects incomplete", mode: FailInvalid, body: incomplete, want: http.StatusUnprocessableEntity},
		{name: "schema violation", mode: FailNever, body: `{"name":"Josh","likesSignals":"maybe","explanation":""}`, want: http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := post(newHandler(t, WithFailureMode(tc.mode)), tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandler_RecordsAcceptedPayloads(t *testing.T) {
	h := newHandler(t)
	post(h, `{"name":"Josh","likesSignals":"no","explanation":"too implicit"}`)

	want := []lifecycle.Fields{{Name: "Josh", LikesSignals: "no", Explanation: "too implicit"}}
	if diff := cmp.Diff(want, h.Received()); diff != "" {
		t.Fatalf("received mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/someapi", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestParseFailureMode(t *testing.T) {
	if mode, err := ParseFailureMode(""); err != nil || mode != FailNever {
		t.Fatalf("empty mode = %q, %v", mode, err)
	}
	if mode, err := ParseFailureMode("ALWAYS"); err != nil || mode != FailAlways {
		t.Fatalf("ALWAYS = %q, %v", mode, err)
	}
	if _, err := ParseFailureMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestHandler_LatencyDelaysResponse(t *testing.T) {
	const latency = 50 * time.Millisecond
	h := newHandler(t, WithLatency(latency))

	start := time.Now()
	rec := post(h, `{"name":"Josh","likesSignals":"yes","explanation":""}`)
	if elapsed := time.Since(start); elapsed < latency {
		t.Fatalf("responded after %s, want at least %s", elapsed, latency)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestHandler_LatencyStopsWhenRequestCancelled(t *testing.T) {
	h := newHandler(t, WithLatency(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/someapi", strings.NewReader(`{"name":"Josh","likesSignals":"yes","explanation":""}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(rec, req)
	}()
	time.AfterFunc(20*time.Millisecond, cancel)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("handler kept waiting after the request was cancelled")
	}
	if got := h.Received(); len(got) != 0 {
		t.Fatalf("cancelled request was recorded: %v", got)
	}
}
