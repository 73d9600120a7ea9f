// Package app wires the services shared by the API server and the operator console.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/paperbridge/internal/bigcapital"
	"github.com/MrJamesThe3rd/paperbridge/internal/config"
	"github.com/MrJamesThe3rd/paperbridge/internal/database"
	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
	journalStore "github.com/MrJamesThe3rd/paperbridge/internal/journal/store"
	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
	mappingStore "github.com/MrJamesThe3rd/paperbridge/internal/mapping/store"
	"github.com/MrJamesThe3rd/paperbridge/internal/metrics"
	"github.com/MrJamesThe3rd/paperbridge/internal/paperless"
	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
	processingStore "github.com/MrJamesThe3rd/paperbridge/internal/processing/store"
	"github.com/MrJamesThe3rd/paperbridge/internal/report"
	"github.com/MrJamesThe3rd/paperbridge/internal/retry"
	"github.com/MrJamesThe3rd/paperbridge/internal/scheduler"
)

type App struct {
	DB         *sql.DB
	Processing *processing.Service
	Mappings   *mapping.Service
	Reports    *report.Service
	Journal    *journal.Service
	Metrics    *metrics.Metrics
	Poller     *scheduler.Poller
}

// New connects to the database, applies migrations and builds the services.
// Poller is nil when polling is disabled and Metrics is nil when metrics are off.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.New(ctx, cfg.ConnectionString(), database.DefaultPool)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	source := paperless.New(cfg.Paperless.URL, cfg.Paperless.Token, cfg.Processing.RequestTimeout,
		paperless.WithTag(cfg.Paperless.Tag))

	target := bigcapital.New(cfg.BigCapital.URL, cfg.BigCapital.APIKey, cfg.BigCapital.TenantID, cfg.Processing.RequestTimeout,
		bigcapital.Accounts{
			PaymentAccountID: cfg.BigCapital.PaymentAccountID,
			DefaultAccountID: cfg.BigCapital.DefaultAccountID,
			CategoryAccounts: cfg.BigCapital.CategoryAccounts,
		})

	mappings := mapping.NewService(mappingStore.New(db))
	logs := journal.NewService(journalStore.New(db))

	opts := processing.Options{
		Retry:              retry.New(cfg.Processing.MaxRetries, cfg.Processing.RetryDelay),
		BatchSize:          cfg.Processing.BatchSize,
		Workers:            cfg.Processing.Workers,
		MaxDocumentRetries: cfg.Processing.MaxDocumentRetries,
		Journal:            logs,
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		opts.Observer = m
	}

	svc := processing.NewService(processingStore.New(db), source, target, mappings, opts)

	if m != nil {
		if err := m.CollectStatistics(svc); err != nil {
			db.Close()
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	a := &App{
		DB:         db,
		Processing: svc,
		Mappings:   mappings,
		Reports:    report.NewService(svc),
		Journal:    logs,
		Metrics:    m,
	}

	if cfg.Processing.PollEnabled {
		a.Poller = scheduler.NewPoller(svc, cfg.Processing.CheckInterval, cfg.Processing.PollLimit, cfg.Processing.BatchSize)
	}

	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
