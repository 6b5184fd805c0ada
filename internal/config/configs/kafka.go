package configs

// Kafka configures the topic push notifications are relayed to. Without
// brokers the relay is not started and notifications stay in the inbox.
type Kafka struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"bazaar.notifications"`
}

// Enabled reports whether at least one broker is configured.
func (c Kafka) Enabled() bool {
	return len(c.Brokers) > 0
}
