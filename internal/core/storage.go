package core

import (
	"fmt"
	"os"

	"feedlot/internal/infra/persistence/memory"
	"feedlot/internal/infra/persistence/postgres"
	"feedlot/internal/infra/persistence/sqlite"
	"feedlot/pkg/domain"
)

// Storage driver selection environment variables.
const (
	EnvStorageDriver = "FEEDLOT_STORAGE_DRIVER"
	EnvSQLitePath    = "FEEDLOT_SQLITE_PATH"
	EnvPostgresDSN   = "FEEDLOT_POSTGRES_DSN"
)

// NewInMemoryService constructs a service over a fresh in-memory store.
// Convenience for tests and ephemeral tooling.
func NewInMemoryService(engine *domain.RulesEngine, opts ...ServiceOption) *Service {
	return NewService(memory.NewStore(engine), opts...)
}

// OpenPersistentStore selects a storage backend from the environment.
// Supported drivers: sqlite (default), postgres, memory.
func OpenPersistentStore(engine *domain.RulesEngine, opts ...memory.Option) (domain.PersistentStore, error) {
	driver := os.Getenv(EnvStorageDriver)
	switch driver {
	case "", "sqlite":
		return sqlite.NewStore(os.Getenv(EnvSQLitePath), engine, opts...)
	case "postgres":
		return postgres.NewStore(os.Getenv(EnvPostgresDSN), engine, opts...)
	case "memory":
		return memory.NewStore(engine, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
