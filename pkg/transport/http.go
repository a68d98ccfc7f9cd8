package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// DefaultEndpoint is the endpoint identifier the reference form posts to.
const DefaultEndpoint = "someapi"

const (
	tracerName   = "github.com/goliatone/go-formstate/pkg/transport"
	maxErrorBody = 512
)

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("transport: unexpected status %s", e.Status)
	}
	return fmt.Sprintf("transport: unexpected status %s: %s", e.Status, e.Body)
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithHTTPClient overrides the client used for submits.
func WithHTTPClient(client *http.Client) Option {
	return func(t *HTTP) {
		if client != nil {
			t.client = client
		}
	}
}

// WithEndpoint overrides the endpoint resolved against the base URL.
func WithEndpoint(endpoint string) Option {
	return func(t *HTTP) {
		if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
			t.endpoint = trimmed
		}
	}
}

// WithHeader adds a static request header.
func WithHeader(name, value string) Option {
	return func(t *HTTP) {
		if name = strings.TrimSpace(name); name != "" {
			t.headers.Set(name, value)
		}
	}
}

// HTTP posts the field mapping as a flat JSON object. It performs no retries
// and sets no timeout beyond the client's own.
type HTTP struct {
	client   *http.Client
	baseURL  string
	endpoint string
	headers  http.Header
	target   string
}

var _ lifecycle.SubmitTransport = (*HTTP)(nil)

// NewHTTP builds a transport posting to endpoint resolved against baseURL.
// baseURL may be empty when the endpoint is an absolute URL.
func NewHTTP(baseURL string, options ...Option) (*HTTP, error) {
	t := &HTTP{
		client:   &http.Client{},
		baseURL:  strings.TrimSpace(baseURL),
		endpoint: DefaultEndpoint,
		headers:  make(http.Header),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}

	target, err := resolve(t.baseURL, t.endpoint)
	if err != nil {
		return nil, err
	}
	t.target = target
	return t, nil
}

// URL reports the resolved submit URL.
func (t *HTTP) URL() string {
	return t.target
}

// Submit implements lifecycle.SubmitTransport.
func (t *HTTP) Submit(ctx context.Context, fields lifecycle.Fields) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "transport.submit")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("http.method", http.MethodPost),
		attribute.String("http.url", t.target),
	)

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("transport: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	for name, values := range t.headers {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: post %s: %w", t.target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func resolve(baseURL, endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("transport: parse endpoint: %w", err)
	}
	if baseURL == "" {
		if !ref.IsAbs() {
			return "", errors.New("transport: base url is required for relative endpoint " + endpoint)
		}
		return ref.String(), nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("transport: parse base url: %w", err)
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("transport: base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String(), nil
}
