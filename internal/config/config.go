package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"bazaar-ads/internal/config/configs"
)

// EnvProd is the deployment environment in which seeding is refused.
const EnvProd = "prod"

// Config aggregates all configuration sections. Each section is read from
// the variables carrying its envPrefix; defaults live on the section types.
type Config struct {
	Env string `env:"ENV" envDefault:"prod"`

	HTTP    configs.HTTP     `envPrefix:"HTTP_"`
	Log     configs.Logger   `envPrefix:"LOG_"`
	Psql    configs.Postgres `envPrefix:"PSQL_"`
	Store   configs.Store    `envPrefix:"STORE_"`
	Redis   configs.Redis    `envPrefix:"REDIS_"`
	Kafka   configs.Kafka    `envPrefix:"KAFKA_"`
	Tracing configs.Tracing  `envPrefix:"TRACING_"`
	Workers configs.Workers  `envPrefix:"WORKER_"`
}

// Prod reports whether the service runs in production.
func (c Config) Prod() bool { return c.Env == EnvProd }

// Validate rejects combinations that parse but cannot run.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Driver) {
	case configs.DriverPostgres, configs.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Psql.MinConns > c.Psql.MaxConns && c.Psql.MaxConns > 0 {
		errs = append(errs, fmt.Errorf("psql min conns %d exceed max conns %d", c.Psql.MinConns, c.Psql.MaxConns))
	}
	if c.Workers.ExpiryInterval <= 0 || c.Workers.RelayInterval <= 0 {
		errs = append(errs, errors.New("worker intervals must be positive"))
	}
	if c.Workers.RelayBatch <= 0 {
		errs = append(errs, errors.New("worker relay batch must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads a .env file when present, then the environment, and validates
// the result. Variables already set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
