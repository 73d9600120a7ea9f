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

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/paperbridge/internal/app"
	"github.com/MrJamesThe3rd/paperbridge/internal/config"
	bridgeHttp "github.com/MrJamesThe3rd/paperbridge/internal/http"
	"github.com/MrJamesThe3rd/paperbridge/internal/http/auth"
	mappingHandler "github.com/MrJamesThe3rd/paperbridge/internal/http/mapping"
	processingHandler "github.com/MrJamesThe3rd/paperbridge/internal/http/processing"
	reportHandler "github.com/MrJamesThe3rd/paperbridge/internal/http/report"
	"github.com/MrJamesThe3rd/paperbridge/internal/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	authn := auth.New(cfg.Auth.APIKey, cfg.Auth.JWTSecret)
	if !authn.Enabled() {
		slog.Warn("API authentication disabled: set API_KEY or JWT_SECRET")
	}

	var (
		processingH = processingHandler.NewHandler(a.Processing, a.Poller, a.Journal)
		mappingH    = mappingHandler.NewHandler(a.Mappings)
		reportH     = reportHandler.NewHandler(a.Reports)
	)

	opts := bridgeHttp.Options{
		AllowedOrigins: cfg.Auth.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
		TokenTTL:       cfg.Auth.TokenTTL,
		Settings:       cfg.Summary(),
	}

	if a.Metrics != nil {
		opts.Metrics = a.Metrics.Handler()
	}

	router := bridgeHttp.New(opts, authn, processingH, mappingH, reportH)

	pollerDone := make(chan struct{})

	if a.Poller != nil {
		go func() {
			defer close(pollerDone)
			a.Poller.Run(ctx)
		}()
	} else {
		close(pollerDone)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", srv.Addr, "polling", a.Poller != nil)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	// Documents already picked up by the poller finish before the pool closes.
	select {
	case <-pollerDone:
	case <-shutdownCtx.Done():
		slog.Warn("poller still running at shutdown deadline")
	}

	return nil
}
