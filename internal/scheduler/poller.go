// Package scheduler periodically syncs pending source documents.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type Processor interface {
	ProcessPending(ctx context.Context, limit, batchSize int) ([]processing.Outcome, error)
}

// Run summarizes one poll.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Completed  int
	Failed     int
	Skipped    int
	Error      string
}

type Poller struct {
	processor Processor
	interval  time.Duration
	limit     int
	batchSize int

	mu   sync.RWMutex
	last *Run
}

func NewPoller(processor Processor, interval time.Duration, limit, batchSize int) *Poller {
	return &Poller{
		processor: processor,
		interval:  interval,
		limit:     limit,
		batchSize: batchSize,
	}
}

// Run polls once immediately and then every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("poller started", "interval", p.interval, "limit", p.limit, "batch_size", p.batchSize)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller stopped")
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll processes one batch of pending documents and records the result.
func (p *Poller) Poll(ctx context.Context) Run {
	run := Run{StartedAt: time.Now().UTC()}

	outcomes, err := p.processor.ProcessPending(ctx, p.limit, p.batchSize)
	if err != nil {
		run.Error = err.Error()
		slog.Error("polling pending documents", "error", err)
	}

	for _, o := range outcomes {
		switch o.Status {
		case processing.StatusCompleted:
			run.Completed++
		case processing.StatusFailed:
			run.Failed++
		case processing.StatusSkipped:
			run.Skipped++
		}
	}

	run.FinishedAt = time.Now().UTC()

	if len(outcomes) > 0 {
		slog.Info("poll finished",
			"documents", len(outcomes),
			"completed", run.Completed,
			"failed", run.Failed,
			"skipped", run.Skipped,
			"took", run.FinishedAt.Sub(run.StartedAt))
	}

	p.mu.Lock()
	p.last = &run
	p.mu.Unlock()

	return run
}

// Last returns the most recent poll, or nil before the first one.
func (p *Poller) Last() *Run {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.last == nil {
		return nil
	}

	run := *p.last

	return &run
}
