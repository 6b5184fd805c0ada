package configs

// Redis configures the change feed shared between service replicas. An
// empty Addr disables Redis and keeps the feed in process.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Channel  string `env:"CHANNEL" envDefault:"bazaar:changes"`
}

// Enabled reports whether a Redis server is configured.
func (c Redis) Enabled() bool {
	return c.Addr != ""
}
