package config_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/paperbridge/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 3, cfg.Processing.MaxRetries)
	assert.Equal(t, time.Second, cfg.Processing.RetryDelay)
	assert.Equal(t, 10, cfg.Processing.BatchSize)
	assert.Equal(t, 1, cfg.Processing.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Processing.CheckInterval)
	assert.True(t, cfg.Processing.PollEnabled)
	assert.Equal(t, 5, cfg.Processing.MaxDocumentRetries)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "postgres://postgres:@localhost:5432/paperbridge?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("MAX_DOCUMENT_RETRIES", "2")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("BIGCAPITAL_CATEGORY_ACCOUNTS", "office_expenses:1010,travel_expenses:1020")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Processing.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Processing.RetryDelay)
	assert.Equal(t, 2, cfg.Processing.MaxDocumentRetries)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, map[string]int64{"office_expenses": 1010, "travel_expenses": 1020}, cfg.BigCapital.CategoryAccounts)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Auth.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	type testCase struct {
		name    string
		env     string
		value   string
		wantErr string
	}

	tests := []testCase{
		{name: "BatchSize", env: "BATCH_SIZE", value: "0", wantErr: "BATCH_SIZE"},
		{name: "DocumentRetries", env: "MAX_DOCUMENT_RETRIES", value: "0", wantErr: "MAX_DOCUMENT_RETRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			_, err := config.Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_Summary(t *testing.T) {
	t.Setenv("API_KEY", "s3cret")
	t.Setenv("BIGCAPITAL_API_KEY", "bc-key")

	cfg, err := config.Load()
	require.NoError(t, err)

	s := cfg.Summary()

	assert.Equal(t, "Paperbridge", s.Name)
	assert.Equal(t, "5m0s", s.CheckInterval)
	assert.True(t, s.AuthEnabled)
	assert.NotContains(t, fmt.Sprintf("%+v", s), "s3cret")
	assert.NotContains(t, fmt.Sprintf("%+v", s), "bc-key")
}
