// Package config resolves runtime configuration for the console server.
// It merges an optional YAML file with environment overrides so both local
// runs (.env via godotenv in main) and deployed runs work unchanged.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration.
type Config struct {
	Port        string
	DatabaseURL string
	// RedisURL, when set, switches the change-notification bus from
	// in-process to Redis pub/sub so fan-out crosses instances.
	RedisURL       string
	JWTSecret      string
	AllowedOrigins string
	// InventoryBackend selects the BalanceStore implementation:
	// "postgres" (default) or "memory" (fixture data, demos).
	InventoryBackend string
}

// configFile mirrors the YAML schema of configs/console.yaml.
type configFile struct {
	Server struct {
		Port           string `yaml:"port"`
		AllowedOrigins string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Dependencies struct {
		DatabaseURL string `yaml:"database_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Inventory struct {
		Backend string `yaml:"backend"`
	} `yaml:"inventory"`
}

// Load reads the YAML file named by CONFIG_FILE (if any), applies environment
// overrides, and fills defaults. Secrets only ever come from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             "8080",
		InventoryBackend: "postgres",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var f configFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		applyFile(cfg, f)
	}

	applyEnv(cfg)

	if cfg.InventoryBackend != "postgres" && cfg.InventoryBackend != "memory" {
		return nil, fmt.Errorf("unknown inventory backend %q", cfg.InventoryBackend)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Server.Port != "" {
		cfg.Port = f.Server.Port
	}
	if f.Server.AllowedOrigins != "" {
		cfg.AllowedOrigins = f.Server.AllowedOrigins
	}
	if f.Dependencies.DatabaseURL != "" {
		cfg.DatabaseURL = f.Dependencies.DatabaseURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Inventory.Backend != "" {
		cfg.InventoryBackend = f.Inventory.Backend
	}
}

func applyEnv(cfg *Config) {
	for env, dst := range map[string]*string{
		"SERVER_PORT":       &cfg.Port,
		"DATABASE_URL":      &cfg.DatabaseURL,
		"REDIS_URL":         &cfg.RedisURL,
		"JWT_SECRET":        &cfg.JWTSecret,
		"ALLOWED_ORIGINS":   &cfg.AllowedOrigins,
		"INVENTORY_BACKEND": &cfg.InventoryBackend,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}
