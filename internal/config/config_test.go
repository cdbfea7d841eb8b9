package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("expected default database host localhost, got %q", cfg.Database.Host)
	}
	if cfg.Task.Interval != 60 {
		t.Errorf("expected default task interval 60, got %d", cfg.Task.Interval)
	}
}

func TestLoadEnvOverridesNestedKeys(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected DATABASE_HOST to override database.host, got %q", cfg.Database.Host)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected SERVER_PORT to override server.port, got %q", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected LOG_LEVEL to override log.level, got %q", cfg.Log.Level)
	}
}
