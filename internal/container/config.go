// Package container provides dependency injection and lifecycle management
// for the opsflow workflow services.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Export configuration
	Export ExportConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file, or ":memory:"
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// ExportConfig holds invoice export settings.
type ExportConfig struct {
	// ArchiveDir receives a copy of every exported workbook. Empty disables archiving.
	ArchiveDir string

	// DefaultFont is applied to exported workbooks
	DefaultFont string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/opsflow.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Export: ExportConfig{
			ArchiveDir:  "data/exports",
			DefaultFont: "Calibri",
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
