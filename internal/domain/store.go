// Package domain defines the core types and ports for harrier.
package domain

import "context"

// Store is the persistence port behind a collection. Load returns the
// previously saved snapshot, or an empty slice when none exists. Save
// overwrites the whole snapshot; it is never incremental.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
}

// StorageConfig holds configuration for snapshot store initialization.
type StorageConfig struct {
	// Driver is the storage backend: "json", "sqlite" or "postgres"
	Driver string

	// JSON snapshot specific
	DataDir string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}
