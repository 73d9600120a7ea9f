package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/paperbridge/internal/config"
	"github.com/MrJamesThe3rd/paperbridge/internal/http/auth"
	"github.com/MrJamesThe3rd/paperbridge/internal/http/mapping"
	"github.com/MrJamesThe3rd/paperbridge/internal/http/processing"
	"github.com/MrJamesThe3rd/paperbridge/internal/http/report"
)

const version = "1.0.0"

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	TokenTTL       time.Duration
	Settings       config.Summary
	// Metrics is served at /metrics when set.
	Metrics http.Handler
}

func New(
	opts Options,
	authn *auth.Authenticator,
	processingV1 *processing.Handler,
	mappingV1 *mapping.Handler,
	reportV1 *report.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.HeaderAPIKey},
		MaxAge:         300,
	}))

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(authn.Middleware)

		processingV1.Routes(r)

		r.Route("/mappings", mappingV1.Routes)
		r.Route("/report", reportV1.Routes)

		r.Get("/config", settings(opts.Settings))
		r.Post("/auth/token", authn.TokenHandler(opts.TokenTTL))
	})

	return router
}

type settingsResponse struct {
	config.Summary
	Version string `json:"version"`
}

func settings(s config.Summary) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(settingsResponse{Summary: s, Version: version}); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}
