package mockapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/schema"
)

// FailureMode controls which submissions the mock endpoint rejects.
type FailureMode string

const (
	// FailNever accepts every schema-valid payload.
	FailNever FailureMode = "never"
	// FailAlways answers every submit with 500.
	FailAlways FailureMode = "always"
	// FailInvalid also rejects payloads that break field validation, such as
	// likesSignals "no" with an empty explanation.
	FailInvalid FailureMode = "invalid"
)

const maxBodyBytes = 64 << 10

// ParseFailureMode resolves a configured mode name. Empty means FailNever.
func ParseFailureMode(raw string) (FailureMode, error) {
	switch mode := FailureMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return FailNever, nil
	case FailNever, FailAlways, FailInvalid:
		return mode, nil
	default:
		return "", fmt.Errorf("mockapi: unknown failure mode %q", raw)
	}
}

// Option configures the Handler.
type Option func(*Handler)

// WithFailureMode selects which submissions are rejected.
func WithFailureMode(mode FailureMode) Option {
	return func(h *Handler) {
		if mode != "" {
			h.mode = mode
		}
	}
}

// WithLatency delays every response, simulating a slow endpoint.
func WithLatency(d time.Duration) Option {
	return func(h *Handler) {
		h.latency = d
	}
}

// Handler simulates the remote submit endpoint. Payloads are validated
// against the form schema before the failure mode is applied.
type Handler struct {
	schema  *schema.Schema
	mode    FailureMode
	latency time.Duration

	mu       sync.Mutex
	received []lifecycle.Fields
}

// New builds a handler for the submit operation described by s.
func New(s *schema.Schema, options ...Option) *Handler {
	h := &Handler{
		schema: s,
		mode:   FailNever,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

// Path reports the route the handler expects to be mounted on.
func (h *Handler) Path() string {
	return h.schema.Path()
}

// Received returns the payloads accepted so far.
func (h *Handler) Received() []lifecycle.Fields {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]lifecycle.Fields(nil), h.received...)
}

type errorResponse struct {
	Errors map[string][]string `json:"errors"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != h.schema.Method() {
		w.Header().Set("Allow", h.schema.Method())
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.latency > 0 {
		timer := time.NewTimer(h.latency)
		defer timer.Stop()
		select {
		case <-r.Context().Done():
			return
		case <-timer.C:
		}
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	if err := h.schema.ValidateJSON(raw); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Errors: map[string][]string{"form": {err.Error()}},
		})
		return
	}

	var fields lifecycle.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		http.Error(w, "decode body", http.StatusBadRequest)
		return
	}

	switch h.mode {
	case FailAlways:
		http.Error(w, "submission rejected", http.StatusInternalServerError)
		return
	case FailInvalid:
		if errs := fields.Validate(); len(errs) > 0 {
			payload := errorResponse{Errors: make(map[string][]string, len(errs))}
			for key, messages := range errs {
				payload.Errors[string(key)] = messages
			}
			writeJSON(w, http.StatusUnprocessableEntity, payload)
			return
		}
	}

	h.mu.Lock()
	h.received = append(h.received, fields)
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
