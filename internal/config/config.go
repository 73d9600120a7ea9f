package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"Paperbridge"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

		// TUILogFile receives the operator console's logs; they are discarded when empty.
		TUILogFile string `envconfig:"TUI_LOG_FILE"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"paperbridge"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		APIKey         string        `envconfig:"API_KEY"`
		JWTSecret      string        `envconfig:"JWT_SECRET"`
		TokenTTL       time.Duration `envconfig:"JWT_TOKEN_TTL" default:"24h"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Paperless struct {
		URL   string `envconfig:"PAPERLESS_URL" default:"http://localhost:8000"`
		Token string `envconfig:"PAPERLESS_TOKEN"`
		// Tag limits polling to documents carrying it. Empty polls everything.
		Tag string `envconfig:"PAPERLESS_TAG"`
	}

	BigCapital struct {
		URL              string           `envconfig:"BIGCAPITAL_URL" default:"http://localhost:3000"`
		APIKey           string           `envconfig:"BIGCAPITAL_API_KEY"`
		TenantID         string           `envconfig:"BIGCAPITAL_TENANT_ID"`
		PaymentAccountID int64            `envconfig:"BIGCAPITAL_PAYMENT_ACCOUNT_ID"`
		DefaultAccountID int64            `envconfig:"BIGCAPITAL_DEFAULT_ACCOUNT_ID"`
		CategoryAccounts map[string]int64 `envconfig:"BIGCAPITAL_CATEGORY_ACCOUNTS"`
	}

	Processing struct {
		MaxRetries         int           `envconfig:"MAX_RETRIES" default:"3"`
		RetryDelay         time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
		MaxDocumentRetries int           `envconfig:"MAX_DOCUMENT_RETRIES" default:"5"`
		BatchSize          int           `envconfig:"BATCH_SIZE" default:"10"`
		Workers            int           `envconfig:"WORKERS" default:"1"`
		CheckInterval      time.Duration `envconfig:"CHECK_INTERVAL" default:"5m"`
		PollLimit          int           `envconfig:"POLL_LIMIT" default:"50"`
		PollEnabled        bool          `envconfig:"POLL_ENABLED" default:"true"`
		RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	}

	Metrics struct {
		Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// Summary holds the settings that are safe to expose over the API.
type Summary struct {
	Name          string `json:"name"`
	PaperlessURL  string `json:"paperless_url"`
	BigCapitalURL string `json:"bigcapital_url"`
	DatabaseHost  string `json:"database_host"`
	DatabaseName  string `json:"database_name"`
	CheckInterval string `json:"check_interval"`
	BatchSize     int    `json:"batch_size"`
	MaxRetries    int    `json:"max_retries"`
	DocRetries    int    `json:"max_document_retries"`
	Workers       int    `json:"workers"`
	PollEnabled   bool   `json:"poll_enabled"`
	AuthEnabled   bool   `json:"authentication_enabled"`
}

func (c *Config) Summary() Summary {
	return Summary{
		Name:          c.App.Name,
		PaperlessURL:  c.Paperless.URL,
		BigCapitalURL: c.BigCapital.URL,
		DatabaseHost:  c.DB.Host,
		DatabaseName:  c.DB.Name,
		CheckInterval: c.Processing.CheckInterval.String(),
		BatchSize:     c.Processing.BatchSize,
		MaxRetries:    c.Processing.MaxRetries,
		DocRetries:    c.Processing.MaxDocumentRetries,
		Workers:       c.Processing.Workers,
		PollEnabled:   c.Processing.PollEnabled,
		AuthEnabled:   c.Auth.APIKey != "" || c.Auth.JWTSecret != "",
	}
}

func (c *Config) validate() error {
	if c.Processing.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.Processing.MaxRetries)
	}

	if c.Processing.MaxDocumentRetries < 1 {
		return fmt.Errorf("MAX_DOCUMENT_RETRIES must be at least 1, got %d", c.Processing.MaxDocumentRetries)
	}

	if c.Processing.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.Processing.BatchSize)
	}

	if c.Processing.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Processing.Workers)
	}

	if c.Processing.PollEnabled && c.Processing.CheckInterval <= 0 {
		return fmt.Errorf("CHECK_INTERVAL must be positive when polling is enabled")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
