package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

const tracerName = "github.com/goliatone/go-formstate/pkg/loader"

// HTTP returns a loader that GETs url and decodes a JSON object of field
// values. A zero timeout leaves the deadline to ctx and the client.
func HTTP(client *http.Client, url string, timeout time.Duration) lifecycle.DataLoader {
	if client == nil {
		client = &http.Client{}
	}
	return &httpLoader{client: client, url: url, timeout: timeout}
}

type httpLoader struct {
	client  *http.Client
	url     string
	timeout time.Duration
}

func (l *httpLoader) Load(ctx context.Context) (lifecycle.Patch, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "loader.http")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", l.url))

	data, err := l.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return decodePatch(data)
}

func (l *httpLoader) fetch(ctx context.Context) ([]byte, error) {
	if l.url == "" {
		return nil, errors.New("loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if l.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("loader: unexpected status " + resp.Status)
	}
	return io.ReadAll(resp.Body)
}
