package processing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

func TestService_Statistics(t *testing.T) {
	f := newFixture(t, processing.Options{})
	ctx := context.Background()

	f.store.Seed(
		&processing.ProcessedDocument{SourceID: 1, Status: processing.StatusCompleted},
		&processing.ProcessedDocument{SourceID: 2, Status: processing.StatusCompleted},
		&processing.ProcessedDocument{SourceID: 3, Status: processing.StatusCompleted},
		&processing.ProcessedDocument{SourceID: 4, Status: processing.StatusFailed},
		&processing.ProcessedDocument{SourceID: 5, Status: processing.StatusPending},
		&processing.ProcessedDocument{SourceID: 6, Status: processing.StatusSkipped},
	)
	require.NoError(t, f.store.CreateError(ctx, &processing.ProcessingError{
		SourceID:   4,
		Kind:       processing.KindAPI,
		Message:    "boom",
		OccurredAt: time.Now(),
	}))

	stats := f.svc.Statistics(ctx)

	assert.Empty(t, stats.Error)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 3, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Processing)
	assert.Equal(t, 1, stats.UnresolvedErrors)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.001)

	// Reflects the store at call time.
	f.store.Seed(&processing.ProcessedDocument{SourceID: 4, Status: processing.StatusCompleted})
	assert.Equal(t, 4, f.svc.Statistics(ctx).Completed)
}

func TestService_Statistics_Degraded(t *testing.T) {
	f := newFixture(t, processing.Options{})
	f.store.FailWith(errors.New("database unreachable"))

	stats := f.svc.Statistics(context.Background())

	assert.Equal(t, "database unreachable", stats.Error)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.SuccessRate)
}

func TestService_Health(t *testing.T) {
	f := newFixture(t, processing.Options{})

	f.source.EXPECT().HealthCheck(gomock.Any()).Return(nil)
	f.target.EXPECT().HealthCheck(gomock.Any()).Return(errors.New("401 unauthorized"))

	h := f.svc.Health(context.Background())

	assert.False(t, h.Healthy)
	assert.True(t, h.Components[processing.ComponentDatabase].Healthy)
	assert.True(t, h.Components[processing.ComponentSource].Healthy)
	assert.False(t, h.Components[processing.ComponentTarget].Healthy)
	assert.Equal(t, "401 unauthorized", h.Components[processing.ComponentTarget].Error)
}
