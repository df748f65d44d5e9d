package config

import (
	"os"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/dd?sslmode=disable")
	t.Setenv("AUTH_JWT_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("JOURNAL_SECRET", "journal-secret-0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr default: %q", cfg.Server.Addr)
	}
	if cfg.Auth.AccessTTL != 15*time.Minute {
		t.Fatalf("access ttl default: %v", cfg.Auth.AccessTTL)
	}
	if cfg.Limiter.MaxFails != 5 || cfg.Limiter.Window != 15*time.Minute {
		t.Fatalf("limiter defaults: %+v", cfg.Limiter)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Fatalf("cache should be off by default: %q", cfg.Cache.RedisAddr)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DATABASE_DSN") // t.Setenv above restores it on cleanup

	if _, err := Load(); err == nil {
		t.Fatalf("want error on missing DSN")
	}
}

func TestLoad_ShortJWTKey(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTH_JWT_KEY", "short")

	if _, err := Load(); err == nil {
		t.Fatalf("want error on short jwt key")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("CACHE_REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
