/*
Package config loads server configuration.

SOURCES (later wins):
  1. .env file in the working directory, if present (godotenv)
  2. Environment variables (cleanenv struct tags)
  3. Command-line flags for the operational knobs (port, db path)

FAIL-FAST CONTRACT:
  Secrets the enabled features depend on are validated at startup and missing
  ones are a ConfigurationError: the JWT secret always, the Resend key when
  email is enabled, the Paystack key when payments are enabled. A server that
  would 502 every request is better off not starting.
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/ablelink/invest-engine/invest"
)

// Config is the full server configuration.
type Config struct {
	Port   int    `env:"PORT" env-default:"8080"`
	DBPath string `env:"DB_PATH" env-default:"invest.db"`

	// Session tokens
	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"24h"`

	// Email (Resend). Disabled means notifications are discarded.
	EmailEnabled bool   `env:"EMAIL_ENABLED" env-default:"true"`
	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" env-default:"Able Link <noreply@ablelink.example>"`
	AdminEmail   string `env:"ADMIN_EMAIL"`

	// Payments (Paystack). Disabled means investment submission is rejected.
	PaymentsEnabled   bool   `env:"PAYMENTS_ENABLED" env-default:"true"`
	PaystackSecretKey string `env:"PAYSTACK_SECRET_KEY"`
	PaymentCallback   string `env:"PAYMENT_CALLBACK_URL"`

	// Market data (Twelve Data). Optional.
	TwelveDataAPIKey string `env:"TWELVEDATA_API_KEY"`

	// Monthly window-open notifier.
	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" env-default:"true"`

	// IslamicDatesPath optionally overrides the built-in Islamic holiday table.
	IslamicDatesPath string `env:"ISLAMIC_DATES_PATH"`

	// CORSOrigins is the allowed frontend origins.
	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"http://localhost:3000"`
}

// Load reads configuration from .env, the environment, and flags.
func Load(args []string) (Config, error) {
	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", invest.ErrConfiguration, err)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %v", invest.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the fail-fast contract.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", invest.ErrConfiguration)
	}
	if c.EmailEnabled {
		if c.ResendAPIKey == "" {
			return fmt.Errorf("%w: RESEND_API_KEY is required when email is enabled", invest.ErrConfiguration)
		}
		if c.AdminEmail == "" {
			return fmt.Errorf("%w: ADMIN_EMAIL is required when email is enabled", invest.ErrConfiguration)
		}
	}
	if c.PaymentsEnabled && c.PaystackSecretKey == "" {
		return fmt.Errorf("%w: PAYSTACK_SECRET_KEY is required when payments are enabled", invest.ErrConfiguration)
	}
	return nil
}

// MustLoad is Load for main: configuration errors end the process.
func MustLoad(args []string) Config {
	cfg, err := Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
