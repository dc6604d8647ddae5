// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the feedlot service runtime settings.
type Config struct {
	ListenAddr      string `env:"FEEDLOT_LISTEN_ADDR" envDefault:":8080"`
	StorageDriver   string `env:"FEEDLOT_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath      string `env:"FEEDLOT_SQLITE_PATH" envDefault:"feedlot.db"`
	PostgresDSN     string `env:"FEEDLOT_POSTGRES_DSN"`
	BlobDriver      string `env:"FEEDLOT_BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot      string `env:"FEEDLOT_BLOB_FS_ROOT" envDefault:"./archive"`
	MetricsEnabled  bool   `env:"FEEDLOT_METRICS_ENABLED" envDefault:"true"`
	ShutdownSeconds int    `env:"FEEDLOT_SHUTDOWN_SECONDS" envDefault:"10"`
}

// Load parses configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
