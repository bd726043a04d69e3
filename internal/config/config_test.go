package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10
  min_conns: 2
  max_conn_lifetime: "30m"

log:
  level: "debug"
  format: "text"
`

func TestLoad_FromEnvOnly(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir()) // no config.yaml in cwd

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.DSN != "postgres://u:p@localhost:5432/testdb" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("max_conns default = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %q/%q, want info/json", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_FromYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.MaxConns != 10 || cfg.Database.MinConns != 2 {
		t.Errorf("pool = %d/%d, want 10/2", cfg.Database.MaxConns, cfg.Database.MinConns)
	}
	if cfg.Database.MaxConnLifetime != 30*time.Minute {
		t.Errorf("max_conn_lifetime = %v, want 30m", cfg.Database.MaxConnLifetime)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("log format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_MAX_CONNS", "50")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Database.MaxConns != 50 {
		t.Errorf("max_conns = %d, want env override 50", cfg.Database.MaxConns)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when explicit CONFIG_PATH does not exist")
	}
}

func TestLoad_MissingDSN(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without DATABASE_DSN")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }, true},
		{"min exceeds max", func(c *Config) { c.Database.MinConns = 30 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "logfmt" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Database: DatabaseConfig{DSN: "postgres://localhost/db", MaxConns: 25, MinConns: 5},
				Log:      LogConfig{Level: "info", Format: "json"},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
