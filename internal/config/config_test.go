package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"lpg-console/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "SERVER_PORT", "DATABASE_URL", "REDIS_URL",
		"JWT_SECRET", "ALLOWED_ORIGINS", "INVENTORY_BACKEND",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/lpg")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Port)
	}
	if cfg.InventoryBackend != "postgres" {
		t.Errorf("default backend = %q, want postgres", cfg.InventoryBackend)
	}
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "console.yaml")
	content := `
server:
  port: "9000"
  allowed_origins: "https://console.example.com"
dependencies:
  database_url: "postgres://filehost/lpg"
inventory:
  backend: "memory"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://envhost/lpg")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000 from file", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://envhost/lpg" {
		t.Errorf("database url = %q, want env to win over file", cfg.DatabaseURL)
	}
	if cfg.InventoryBackend != "memory" {
		t.Errorf("backend = %q, want memory", cfg.InventoryBackend)
	}
}

func TestLoad_Validation(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(); err == nil {
		t.Error("missing DATABASE_URL should fail")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/lpg")
	if _, err := config.Load(); err == nil {
		t.Error("missing JWT_SECRET should fail")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("INVENTORY_BACKEND", "dynamo")
	if _, err := config.Load(); err == nil {
		t.Error("unknown backend should fail")
	}
}
