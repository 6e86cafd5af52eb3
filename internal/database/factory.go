package database

import (
	"fmt"
	"os"
	"path/filepath"

	"casefile/internal/config"
	"casefile/internal/database/migrations"
)

// NewStoreFromConfig creates a SQLiteStore based on the provided configuration.
// Supported types are "sqlite" (file-backed, under DataDir) and "memory".
// Both variants are migrated to the latest schema before being returned.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	var path string

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite database requires data_dir")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, "casefile.db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}

	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(store.db); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}
	return store, nil
}
