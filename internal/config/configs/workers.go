package configs

import "time"

// Workers configures the background jobs.
type Workers struct {
	// ExpiryInterval is how often campaigns past their end date are
	// completed.
	ExpiryInterval time.Duration `env:"EXPIRY_INTERVAL" envDefault:"1m"`
	// RelayInterval is how often pending notifications are pushed to Kafka.
	RelayInterval time.Duration `env:"RELAY_INTERVAL" envDefault:"5s"`
	// RelayBatch caps the notifications delivered per relay tick.
	RelayBatch int `env:"RELAY_BATCH" envDefault:"100"`
}
