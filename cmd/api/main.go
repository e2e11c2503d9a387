package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	kc2 "github.com/kc2/kc2"
	"github.com/kc2/kc2/cmd/api/api"
	mw "github.com/kc2/kc2/lib/middleware"
	"github.com/riandyrn/otelchi"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	app, cleanup, err := initializeApp()
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	logger := app.Logger
	cfg := app.Config

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	spec, err := api.LoadSpec(ctx)
	if err != nil {
		return err
	}

	httpMetrics := mw.NoopHTTPMetrics()
	if app.Otel.Meter != nil {
		m, err := mw.NewHTTPMetrics(app.Otel.Meter)
		if err != nil {
			return fmt.Errorf("create http metrics: %w", err)
		}
		httpMetrics = m.Middleware
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if app.Otel.Tracer != nil {
		r.Use(otelchi.Middleware(cfg.OtelServiceName, otelchi.WithChiRoutes(r)))
	}
	r.Use(mw.RequestID)
	r.Use(mw.InjectLogger(logger))
	r.Use(mw.AccessLogger)
	r.Use(httpMetrics)
	// Creating an instance waits for the image download, so it runs under
	// CREATE_TIMEOUT inside the instance manager instead.
	r.Use(mw.Timeout(cfg.RequestTimeout, mw.Route{Method: http.MethodPost, Path: "/instances"}))

	// Serve OpenAPI spec
	r.Get("/spec.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.oai.openapi")
		_, _ = w.Write(kc2.OpenAPIYAML)
	})

	r.Get("/spec.json", func(w http.ResponseWriter, r *http.Request) {
		jsonData, err := yaml.YAMLToJSON(kc2.OpenAPIYAML)
		if err != nil {
			http.Error(w, "Failed to convert YAML to JSON", http.StatusInternalServerError)
			logger.ErrorContext(r.Context(), "Failed to convert YAML to JSON", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jsonData)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// API routes are validated against the OpenAPI document
	r.Group(func(r chi.Router) {
		r.Use(api.NewRequestValidator(spec))
		app.ApiService.Mount(r)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Error group for coordinated shutdown
	grp, gctx := errgroup.WithContext(ctx)

	// Run the server
	grp.Go(func() error {
		logger.Info("starting kc2 API server", "port", cfg.Port, "lxd_socket", cfg.LXDSocket)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			return err
		}
		return nil
	})

	// Shutdown handler
	grp.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown http server", "error", err)
			return err
		}

		logger.Info("http server shutdown complete")
		return nil
	})

	return grp.Wait()
}
