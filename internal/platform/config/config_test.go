package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets all ONEDAY_ environment variables for a clean test.
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"ONEDAY_SERVER_PORT",
		"ONEDAY_SERVER_HOST",
		"ONEDAY_DATABASE_URL",
		"ONEDAY_DATABASE_MAX_CONNS",
		"ONEDAY_DATABASE_MIN_CONNS",
		"ONEDAY_CACHE_URL",
		"ONEDAY_CACHE_TTL_SECONDS",
		"ONEDAY_LOG_LEVEL",
		"ONEDAY_LOG_FORMAT",
		"ONEDAY_MATERIALS_PATH",
	}
	for _, v := range envVars {
		_ = os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Database.MaxConns = %d, want 25", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns != 5 {
		t.Errorf("Database.MinConns = %d, want 5", cfg.Database.MinConns)
	}
	if cfg.Cache.URL != "redis://localhost:6379" {
		t.Errorf("Cache.URL = %q, want default redis URL", cfg.Cache.URL)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL)
	}
	if cfg.MaterialsPath != "./materials" {
		t.Errorf("MaterialsPath = %q, want ./materials", cfg.MaterialsPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ONEDAY_SERVER_PORT", "9090")
	t.Setenv("ONEDAY_DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("ONEDAY_CACHE_TTL_SECONDS", "60")
	t.Setenv("ONEDAY_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://u:p@db:5432/app" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
	if cfg.Cache.TTL != time.Minute {
		t.Errorf("Cache.TTL = %v, want 1m", cfg.Cache.TTL)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ONEDAY_SERVER_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want fallback 8080", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty-db-url", func(c *Config) { c.Database.URL = "" }, true},
		{"min-above-max", func(c *Config) { c.Database.MinConns = 50 }, true},
		{"negative-ttl", func(c *Config) { c.Cache.TTL = -time.Second }, true},
		{"bad-log-format", func(c *Config) { c.Log.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
