package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Export   ExportConfig   `mapstructure:"export"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// ExportConfig holds invoice export configuration. An empty ArchiveDir
// disables archiving of exported workbooks.
type ExportConfig struct {
	ArchiveDir  string `mapstructure:"archive_dir"`
	DefaultFont string `mapstructure:"default_font"`
}

// Load reads envFile (when present) into the process environment, then loads
// configPath and applies environment overrides. An empty configPath uses
// defaults and the environment only.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := gotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("OPSFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	v.SetDefault("database.path", "data/opsflow.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	// Export defaults
	v.SetDefault("export.archive_dir", "data/exports")
	v.SetDefault("export.default_font", "Calibri")
}

// bindEnvVars binds the short environment names used by deployments
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", "OPSFLOW_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.path", "OPSFLOW_DATABASE_PATH", "DATABASE_PATH")
	_ = v.BindEnv("logger.level", "OPSFLOW_LOGGER_LEVEL", "LOG_LEVEL")
	_ = v.BindEnv("export.archive_dir", "OPSFLOW_EXPORT_ARCHIVE_DIR", "ARCHIVE_DIR")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database connection limits must not be negative")
	}

	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logger.level must be one of debug, info, warn, error; got %q", c.Logger.Level)
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}

// EnsureDirs creates the directories the configuration points at
func (c *Config) EnsureDirs() error {
	if c.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	if c.Export.ArchiveDir != "" {
		if err := os.MkdirAll(c.Export.ArchiveDir, 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	return nil
}

