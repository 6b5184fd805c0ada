package configs

// Tracing configures the Jaeger exporter. Tracing is off when Endpoint is
// empty.
type Tracing struct {
	Endpoint    string `env:"ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"bazaar-ads"`
}

// Enabled reports whether spans should be exported.
func (c Tracing) Enabled() bool {
	return c.Endpoint != ""
}
