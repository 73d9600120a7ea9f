package processing

import (
	"context"
	"log/slog"
	"math"
)

// Health component names.
const (
	ComponentDatabase = "database"
	ComponentSource   = "paperless"
	ComponentTarget   = "bigcapital"
)

// Statistics aggregates the store's current state. When the store cannot be read it
// returns zeroed counts with Error set instead of failing.
func (s *Service) Statistics(ctx context.Context) Statistics {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		slog.Error("counting documents by status", "error", err)
		return Statistics{Error: err.Error()}
	}

	unresolved, err := s.repo.CountUnresolvedErrors(ctx)
	if err != nil {
		slog.Error("counting unresolved errors", "error", err)
		return Statistics{Error: err.Error()}
	}

	stats := Statistics{
		Pending:          counts[StatusPending],
		Processing:       counts[StatusProcessing],
		Completed:        counts[StatusCompleted],
		Failed:           counts[StatusFailed],
		Skipped:          counts[StatusSkipped],
		UnresolvedErrors: unresolved,
	}

	for _, n := range counts {
		stats.Total += n
	}

	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total) * 100
		stats.SuccessRate = math.Round(rate*100) / 100
	}

	return stats
}

// Health checks the store and both remote systems.
func (s *Service) Health(ctx context.Context) Health {
	checks := map[string]func(context.Context) error{
		ComponentDatabase: s.repo.Ping,
		ComponentSource:   s.source.HealthCheck,
		ComponentTarget:   s.target.HealthCheck,
	}

	h := Health{Healthy: true, Components: make(map[string]ComponentHealth, len(checks))}

	for name, check := range checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", "component", name, "error", err)

			h.Healthy = false
			h.Components[name] = ComponentHealth{Error: err.Error()}

			continue
		}

		h.Components[name] = ComponentHealth{Healthy: true}
	}

	return h
}
