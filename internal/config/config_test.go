package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "data/opsflow.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "Calibri", cfg.Export.DefaultFont)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  shutdown_timeout: 3s
database:
  path: /tmp/ops.db
logger:
  level: debug
  format: console
export:
  archive_dir: ""
`)

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/ops.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Empty(t, cfg.Export.ArchiveDir)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns, "unset keys keep defaults")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "server:\n  port: 9090\n")
	t.Setenv("OPSFLOW_SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "OPSFLOW_DATABASE_PATH=/var/lib/opsflow/env.db\n")
	t.Setenv("OPSFLOW_DATABASE_PATH", "")
	require.NoError(t, os.Unsetenv("OPSFLOW_DATABASE_PATH"))

	cfg, err := Load("", envFile)

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/opsflow/env.db", cfg.Database.Path)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeFile(t, "config.yaml", "logger:\n  level: verbose\n")
	_, err = Load(path, "")
	assert.ErrorContains(t, err, "logger.level")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "data/opsflow.db"},
			Logger:   LoggerConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"no database path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative pool", func(c *Config) { c.Database.MaxOpenConns = -1 }, "connection limits"},
		{"bad format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	cfg := Config{
		Database: DatabaseConfig{Path: filepath.Join(base, "db", "opsflow.db")},
		Export:   ExportConfig{ArchiveDir: filepath.Join(base, "exports")},
	}

	require.NoError(t, cfg.EnsureDirs())

	assert.DirExists(t, filepath.Join(base, "db"))
	assert.DirExists(t, filepath.Join(base, "exports"))
}

func TestToContainerConfig(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Path: "x.db", MaxOpenConns: 3, ConnMaxLifetime: time.Minute},
		Export:   ExportConfig{ArchiveDir: "out", DefaultFont: "Arial"},
	}

	got := cfg.ToContainerConfig()

	assert.Equal(t, "x.db", got.Database.Path)
	assert.Equal(t, 3, got.Database.MaxOpenConns)
	assert.Equal(t, time.Minute, got.Database.ConnMaxLifetime)
	assert.Equal(t, "out", got.Export.ArchiveDir)
	assert.Equal(t, "Arial", got.Export.DefaultFont)
}
