// Package web serves one form lifecycle over HTTP: the rendered form, its
// snapshot as JSON, and endpoints that feed edits and submits into the
// controller.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"html"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
)

const (
	// DefaultCSRFField is the hidden input carrying the CSRF token.
	DefaultCSRFField = "_csrf"
	// CSRFHeader carries the token on JSON requests.
	CSRFHeader = "X-CSRF-Token"

	maxBodyBytes = 64 << 10
)

// Controller is the part of lifecycle.Controller the handler drives.
type Controller interface {
	Snapshot() lifecycle.Snapshot
	LastError() error
	ChangeFields(patch lifecycle.Patch) error
	Submit() error
	Reload() error
}

var _ Controller = (*lifecycle.Controller)(nil)

// Option configures the Handler.
type Option func(*Handler)

// WithRegistry sets the renderers available to GET /. The registry default
// is used unless the request names one with ?renderer=.
func WithRegistry(registry *render.Registry) Option {
	return func(h *Handler) {
		if registry != nil {
			h.registry = registry
		}
	}
}

// WithTheme passes a resolved theme to every render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(h *Handler) {
		h.theme = cfg
	}
}

// WithCSRFToken requires token on every POST, read from the named hidden
// field or the X-CSRF-Token header.
func WithCSRFToken(field, token string) Option {
	return func(h *Handler) {
		if strings.TrimSpace(field) == "" {
			field = DefaultCSRFField
		}
		h.csrfField = field
		h.csrfToken = token
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithAssets serves files under /assets/.
func WithAssets(files fs.FS) Option {
	return func(h *Handler) {
		h.assets = files
	}
}

// Handler is an http.Handler bound to a single controller.
type Handler struct {
	ctrl      Controller
	form      model.FormModel
	registry  *render.Registry
	theme     *theme.RendererConfig
	policy    *bluemonday.Policy
	csrfField string
	csrfToken string
	assets    fs.FS
	logger    zerolog.Logger
	mux       *http.ServeMux
}

// New builds a handler serving form through ctrl. form is the unbound model;
// every request binds it to the current snapshot.
func New(ctrl Controller, form model.FormModel, options ...Option) (*Handler, error) {
	if ctrl == nil {
		return nil, errors.New("web: controller is required")
	}
	h := &Handler{
		ctrl:      ctrl,
		form:      form,
		registry:  render.NewRegistry(),
		policy:    bluemonday.StrictPolicy(),
		csrfField: DefaultCSRFField,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if len(h.registry.List()) == 0 {
		return nil, errors.New("web: at least one renderer is required")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("GET /snapshot", h.handleSnapshot)
	mux.HandleFunc("POST /fields", h.handleFields)
	mux.HandleFunc("POST /submit", h.handleSubmit)
	mux.HandleFunc("POST /reload", h.handleReload)
	if h.assets != nil {
		mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServerFS(h.assets)))
	}
	h.mux = mux
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rec, r)
	h.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	opts := render.RenderOptions{
		Action: "/submit",
		Theme:  h.theme,
	}
	if h.csrfToken != "" {
		opts.HiddenFields = render.MergeHiddenFields(nil, render.CSRFToken(h.csrfField, h.csrfToken))
	}
	if snap.Status == lifecycle.StatusError || snap.Status == lifecycle.StatusLoadError {
		if err := h.ctrl.LastError(); err != nil {
			opts.Message = err.Error()
		}
	}

	out, contentType, err := h.registry.Render(r.Context(), r.URL.Query().Get("renderer"), model.Bind(h.form, snap), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("render form")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// handleFields applies a JSON object of field edits, in field order.
func (h *Handler) handleFields(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(r) {
		writeError(w, http.StatusForbidden, errors.New("web: invalid csrf token"))
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	patch, err := lifecycle.ParsePatch(raw)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.apply(patch); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Snapshot())
}

// handleSubmit accepts the rendered HTML form or a JSON patch, applies the
// values and submits. Browsers are redirected back to the form.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	patch, err := h.decodeSubmit(w, r)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !h.checkCSRF(r) {
		writeError(w, http.StatusForbidden, errors.New("web: invalid csrf token"))
		return
	}
	if err := h.apply(patch); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.ctrl.Submit(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.respond(w, r, http.StatusAccepted)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !h.checkCSRF(r) {
		writeError(w, http.StatusForbidden, errors.New("web: invalid csrf token"))
		return
	}
	if err := h.ctrl.Reload(); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.respond(w, r, http.StatusAccepted)
}

func (h *Handler) decodeSubmit(w http.ResponseWriter, r *http.Request) (lifecycle.Patch, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if isJSON(r.Header.Get("Content-Type")) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return lifecycle.ParsePatch(raw)
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	patch := lifecycle.Patch{}
	for _, key := range lifecycle.FieldKeys() {
		if values, ok := r.PostForm[string(key)]; ok && len(values) > 0 {
			patch[key] = values[0]
		}
	}
	return patch, nil
}

// apply pushes patch into the controller as one change. Free-text values are
// stripped of markup before they reach the form state.
func (h *Handler) apply(patch lifecycle.Patch) error {
	if len(patch) == 0 {
		return nil
	}
	clean := make(lifecycle.Patch, len(patch))
	for key, value := range patch {
		if key != lifecycle.FieldLikesSignals {
			value = html.UnescapeString(h.policy.Sanitize(value))
		}
		clean[key] = value
	}
	return h.ctrl.ChangeFields(clean)
}

func (h *Handler) checkCSRF(r *http.Request) bool {
	if h.csrfToken == "" {
		return true
	}
	got := r.Header.Get(CSRFHeader)
	if got == "" {
		got = r.PostFormValue(h.csrfField)
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.csrfToken)) == 1
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int) {
	if isJSON(r.Header.Get("Accept")) || isJSON(r.Header.Get("Content-Type")) {
		writeJSON(w, status, h.ctrl.Snapshot())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrUnknownField), errors.Is(err, lifecycle.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrInvalidForm):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lifecycle.ErrFieldsDisabled), errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrDisposed), errors.Is(err, lifecycle.ErrNotStarted):
		return http.StatusServiceUnavailable
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	}
}

func isJSON(value string) bool {
	return strings.Contains(strings.ToLower(value), "application/json")
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
