// Package app wires configuration into the collaborators shared by the
// formstate commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/internal/platform/config"
	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/loader"
	"github.com/goliatone/go-formstate/pkg/logging"
	"github.com/goliatone/go-formstate/pkg/mockapi"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/transport"
)

const fixtureTimeout = 10 * time.Second

// Loader picks the data loader for cfg. An http(s) fixture is fetched, any
// other fixture is read from disk, and no fixture means the canned default
// record after LoadDelay.
func Loader(cfg config.App, client *http.Client) lifecycle.DataLoader {
	fixture := strings.TrimSpace(cfg.Fixture)
	switch {
	case fixture == "":
		return loader.Canned(loader.DefaultPatch(), cfg.LoadDelay)
	case strings.HasPrefix(fixture, "http://"), strings.HasPrefix(fixture, "https://"):
		return loader.HTTP(client, fixture, fixtureTimeout)
	default:
		return loader.File(fixture)
	}
}

// Transport builds the HTTP submit transport against baseURL, falling back
// to cfg.BaseURL when baseURL is empty.
func Transport(cfg config.App, baseURL string, client *http.Client) (*transport.HTTP, error) {
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	return transport.NewHTTP(baseURL,
		transport.WithHTTPClient(client),
		transport.WithEndpoint(cfg.Endpoint),
	)
}

// Logger builds the zerolog logger described by cfg.
func Logger(cfg config.App) (zerolog.Logger, error) {
	return logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// MockHandler builds the simulated submit endpoint for cfg.
func MockHandler(s *schema.Schema, cfg config.App) (*mockapi.Handler, error) {
	mode, err := mockapi.ParseFailureMode(cfg.MockFailure)
	if err != nil {
		return nil, err
	}
	if cfg.MockLatency < 0 {
		return nil, fmt.Errorf("app: mock latency must not be negative, got %s", cfg.MockLatency)
	}
	return mockapi.New(s,
		mockapi.WithFailureMode(mode),
		mockapi.WithLatency(cfg.MockLatency),
	), nil
}

// MockServer runs a mock endpoint on a loopback port until Close.
type MockServer struct {
	URL     string
	Handler *mockapi.Handler

	server *http.Server
	done   chan error
}

// StartMock serves h on 127.0.0.1 using an ephemeral port.
func StartMock(h *mockapi.Handler, logger zerolog.Logger) (*MockServer, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("app: listen for mock endpoint: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle(h.Path(), h)

	m := &MockServer{
		URL:     "http://" + ln.Addr().String(),
		Handler: h,
		server:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		done:    make(chan error, 1),
	}
	go func() {
		err := m.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		m.done <- err
	}()
	logger.Debug().Str("url", m.URL).Msg("mock endpoint listening")
	return m, nil
}

// Close stops the mock server.
func (m *MockServer) Close(ctx context.Context) error {
	if err := m.server.Shutdown(ctx); err != nil {
		return err
	}
	return <-m.done
}
