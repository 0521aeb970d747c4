package configs

import (
	"strings"
	"testing"
	"time"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := loadFromEnv(envFrom(nil))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development environment, got %q", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseDSN == "" {
		t.Fatal("expected development DSN default")
	}
	if cfg.RedisAddr != "" {
		t.Fatalf("expected cache disabled by default, got %q", cfg.RedisAddr)
	}
	if cfg.RoomCacheTTL != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", cfg.RoomCacheTTL)
	}
	if cfg.DeleteBurst != 5 || cfg.DeleteRate != 0.5 {
		t.Fatalf("expected delete limit 0.5/5, got %v/%d", cfg.DeleteRate, cfg.DeleteBurst)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	cfg, err := loadFromEnv(envFrom(map[string]string{
		"ENVIRONMENT":     "production",
		"PORT":            "9090",
		"ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"DATABASE_URL":    "postgres://db/secretnick",
		"REDIS_ADDR":      "cache:6379",
		"REDIS_DB":        "2",
		"ROOM_CACHE_TTL":  "30s",
		"LOG_LEVEL":       " WARN ",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Port)
	}
	if strings.Join(cfg.AllowedOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.RedisDB != 2 || cfg.RoomCacheTTL != 30*time.Second {
		t.Fatalf("unexpected cache settings %d %v", cfg.RedisDB, cfg.RoomCacheTTL)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected log level warn, got %q", cfg.LogLevel)
	}
}

func TestLoadFromEnvErrors(t *testing.T) {
	tests := map[string]map[string]string{
		"privileged port":      {"PORT": "80"},
		"bad port":             {"PORT": "eighty"},
		"missing prod dsn":     {"ENVIRONMENT": "production"},
		"bad ttl":              {"ROOM_CACHE_TTL": "soon"},
		"zero ttl":             {"ROOM_CACHE_TTL": "0s"},
		"negative ttl":         {"ROOM_CACHE_TTL": "-1m"},
		"non-positive rate":    {"DELETE_RATE": "0"},
		"zero burst":           {"DELETE_BURST": "0"},
		"non-numeric redis db": {"REDIS_DB": "first"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := loadFromEnv(envFrom(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
