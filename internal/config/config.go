package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
)

// Module provides application configuration from the environment.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds runtime configuration for the billing service.
type Config struct {
	Environment string
	HTTPAddr    string

	DatabaseDSN          string
	DatabaseMaxOpenConns int
	DatabaseMaxIdleConns int

	// InvoiceNumberPrefix seeds the internal ledger numbering (PREFIX-YYYY-NNN).
	InvoiceNumberPrefix string
	DefaultCurrency     string

	// IssueDelay simulates invoicing-provider latency during issuance.
	IssueDelay time.Duration
}

// Load reads configuration from environment variables with local defaults.
func Load() Config {
	return Config{
		Environment:          getEnv("FAKTURO_ENV", "development"),
		HTTPAddr:             getEnv("FAKTURO_HTTP_ADDR", ":8080"),
		DatabaseDSN:          getEnv("FAKTURO_DATABASE_DSN", "host=localhost user=fakturo dbname=fakturo sslmode=disable"),
		DatabaseMaxOpenConns: getEnvInt("FAKTURO_DB_MAX_OPEN_CONNS", 10),
		DatabaseMaxIdleConns: getEnvInt("FAKTURO_DB_MAX_IDLE_CONNS", 5),
		InvoiceNumberPrefix:  getEnv("FAKTURO_INVOICE_PREFIX", "FAK"),
		DefaultCurrency:      getEnv("FAKTURO_DEFAULT_CURRENCY", "CZK"),
		IssueDelay:           getEnvDuration("FAKTURO_ISSUE_DELAY", 300*time.Millisecond),
	}
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
