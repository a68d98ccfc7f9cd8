package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-formstate/internal/app"
	"github.com/goliatone/go-formstate/internal/platform/config"
	"github.com/goliatone/go-formstate/internal/platform/otel"
	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/logging"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/schema"
)

func main() {
	config.Main("formstate-cli", run)
}

func run() error {
	cfg, err := config.LoadApp(config.WithLogLevel("warn"))
	if err != nil {
		return err
	}

	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "submit endpoint base URL (an in-process mock when empty)")
	flag.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "submit endpoint resolved against the base URL")
	flag.StringVar(&cfg.Fixture, "fixture", cfg.Fixture, "initial data file or URL")
	flag.DurationVar(&cfg.LoadDelay, "load-delay", cfg.LoadDelay, "delay before the default record loads")
	flag.StringVar(&cfg.MockFailure, "mock-failure", cfg.MockFailure, "mock endpoint failure mode: never, always or invalid")
	flag.DurationVar(&cfg.MockLatency, "mock-latency", cfg.MockLatency, "artificial delay before the mock endpoint answers")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	output := flag.String("output", "", "write the final form summary to this file (stdout if empty)")
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
	shutdownTracing, err := otel.Setup(ctx, "formstate-cli", tracing)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	s, err := schema.Load(ctx)
	if err != nil {
		return err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		h, err := app.MockHandler(s, cfg)
		if err != nil {
			return err
		}
		mock, err := app.StartMock(h, logger)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = mock.Close(closeCtx)
		}()
		baseURL = mock.URL
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

	form := s.FormModel()
	snap, runErr := tui.New().Run(ctx, ctrl, form)
	if errors.Is(runErr, tui.ErrAborted) || errors.Is(runErr, context.Canceled) {
		fmt.Fprintln(os.Stderr, "aborted")
		return nil
	}

	registry := render.NewRegistry()
	registry.MustRegister(tui.Summary{})
	summary, _, err := registry.Render(ctx, tui.SummaryName, model.Bind(form, snap), render.RenderOptions{})
	if err != nil {
		return err
	}

	if *output != "" {
		if err := os.WriteFile(*output, summary, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Summary written to %s\n", *output)
	} else {
		fmt.Print(string(summary))
	}

	return runErr
}
