package configs

import "strings"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store selects the persistence backend. The memory driver keeps all data
// in process and is meant for local runs and demos.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	// Seed fills an empty store with demo users and listings on startup.
	Seed bool `env:"SEED" envDefault:"false"`
}

// Memory reports whether the in-process store is selected.
func (c Store) Memory() bool {
	return strings.EqualFold(c.Driver, DriverMemory)
}
