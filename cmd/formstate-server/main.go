package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/goliatone/go-formstate/internal/app"
	"github.com/goliatone/go-formstate/internal/platform/config"
	"github.com/goliatone/go-formstate/internal/platform/otel"
	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/logging"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/web"
)

func main() {
	config.Main("formstate-server", run)
}

func run() error {
	cfg, err := config.LoadApp()
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "listen address")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "submit endpoint base URL (the built-in mock when empty)")
	flag.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "submit endpoint resolved against the base URL")
	flag.StringVar(&cfg.Fixture, "fixture", cfg.Fixture, "initial data file or URL")
	flag.DurationVar(&cfg.LoadDelay, "load-delay", cfg.LoadDelay, "delay before the default record loads")
	flag.StringVar(&cfg.MockFailure, "mock-failure", cfg.MockFailure, "mock endpoint failure mode: never, always or invalid")
	flag.DurationVar(&cfg.MockLatency, "mock-latency", cfg.MockLatency, "artificial delay before the mock endpoint answers")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	variant := flag.String("theme-variant", "", "theme variant (dark)")
	csrf := flag.Bool("csrf", true, "require a CSRF token on POST requests")
	flag.Parse()

	logger, err := app.Logger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := otel.LoadSettings()
	if err != nil {
		return err
	}
	shutdownTracing, err := otel.Setup(ctx, "formstate-server", tracing)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	s, err := schema.Load(ctx)
	if err != nil {
		return err
	}
	mock, err := app.MockHandler(s, cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://" + loopback(ln.Addr())
	}

	client := &http.Client{Timeout: 30 * time.Second}
	submit, err := app.Transport(cfg, baseURL, client)
	if err != nil {
		return err
	}

	ctrl := lifecycle.New(app.Loader(cfg, client), submit,
		lifecycle.WithObserver(logging.StatusObserver(logger)),
	)
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Dispose()

	themeCfg, err := render.ResolveTheme(render.StaticSelector{Manifest: render.DefaultManifest()}, "", *variant)
	if err != nil {
		return err
	}
	html, err := vanilla.New()
	if err != nil {
		return err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(tui.Summary{})

	opts := []web.Option{
		web.WithRegistry(registry),
		web.WithTheme(themeCfg),
		web.WithAssets(vanilla.AssetsFS()),
		web.WithLogger(logger),
	}
	if *csrf {
		token, err := newToken()
		if err != nil {
			return fmt.Errorf("csrf token: %w", err)
		}
		opts = append(opts, web.WithCSRFToken(web.DefaultCSRFField, token))
	}
	handler, err := web.New(ctrl, s.FormModel(), opts...)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(mock.Path(), mock)
	mux.Handle("/", handler)

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().
		Str("addr", ln.Addr().String()).
		Str("submit_url", submit.URL()).
		Msg("formstate server listening")
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// loopback rewrites wildcard listen addresses so the transport can reach the
// mock endpoint on the same listener.
func loopback(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(tcp.Port))
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
