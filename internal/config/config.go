package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
)

type Config struct {
	App struct {
		Name      string `envconfig:"APP_NAME" default:"NFSe Audit"`
		Port      int    `envconfig:"PORT" default:"8080"`
		LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"nfseaudit"`
	}

	Server struct {
		Timeout       time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		MaxUploadSize int64         `envconfig:"SERVER_MAX_UPLOAD_SIZE" default:"33554432"`
	}

	Auth struct {
		// JWTSecret enables HS256 bearer authentication on the API when set.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Audit struct {
		RateTable string `envconfig:"AUDIT_RATE_TABLE" default:"standard"`
		Workers   int    `envconfig:"AUDIT_WORKERS" default:"0"`
		GapLimit  int    `envconfig:"AUDIT_GAP_LIMIT" default:"1000"`

		// Overrides of the selected table. Zero keeps the table's value.
		IRThreshold       decimal.Decimal `envconfig:"AUDIT_IR_THRESHOLD"`
		CombinedThreshold decimal.Decimal `envconfig:"AUDIT_COMBINED_THRESHOLD"`
		ISSReferenceRate  decimal.Decimal `envconfig:"AUDIT_ISS_REFERENCE_RATE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// RateTable resolves the configured table and applies any overrides.
func (c *Config) RateTable() (reconcile.RateTable, error) {
	return c.RateTableNamed(c.Audit.RateTable)
}

// RateTableNamed resolves name, falling back to the configured table when
// name is empty, and applies the configured overrides.
func (c *Config) RateTableNamed(name string) (reconcile.RateTable, error) {
	if name == "" {
		name = c.Audit.RateTable
	}

	table, err := reconcile.TableByName(name)
	if err != nil {
		return reconcile.RateTable{}, err
	}

	if !c.Audit.IRThreshold.IsZero() {
		table.IRThreshold = c.Audit.IRThreshold
	}

	if !c.Audit.CombinedThreshold.IsZero() {
		table.CombinedThreshold = c.Audit.CombinedThreshold
	}

	if !c.Audit.ISSReferenceRate.IsZero() {
		table.ISSReference = c.Audit.ISSReferenceRate
	}

	return table, nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.RateTable(); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RATE_TABLE: %w", err)
	}

	return &cfg, nil
}
