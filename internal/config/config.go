// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root server configuration. Values come from environment
// variables with defaults; the DSN, JWT key and journal secret have no safe
// default.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Auth    AuthConfig    `yaml:"auth"`
	Limiter LimiterConfig `yaml:"limiter"`
	Cache   CacheConfig   `yaml:"cache"`
	Journal JournalConfig `yaml:"journal"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"SERVER_ADDR"             env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN" env-required:"true"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	JWTKey    string        `yaml:"jwt_key"    env:"AUTH_JWT_KEY"    env-required:"true"`
	AccessTTL time.Duration `yaml:"access_ttl" env:"AUTH_ACCESS_TTL" env-default:"15m"`
}

// LimiterConfig holds login rate-limiter settings.
type LimiterConfig struct {
	Window   time.Duration `yaml:"window"    env:"LIMITER_WINDOW"    env-default:"15m"`
	MaxFails int           `yaml:"max_fails" env:"LIMITER_MAX_FAILS" env-default:"5"`
	BlockFor time.Duration `yaml:"block_for" env:"LIMITER_BLOCK_FOR" env-default:"15m"`
}

// CacheConfig holds the optional Redis history cache settings.
// An empty addr disables the cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr" env:"CACHE_REDIS_ADDR"`
	TTL       time.Duration `yaml:"ttl"        env:"CACHE_TTL" env-default:"5m"`
}

// JournalConfig holds the at-rest encryption secret for journal entries.
type JournalConfig struct {
	Secret string `yaml:"secret" env:"JOURNAL_SECRET" env-required:"true"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks the rules the env tags can't express.
func (c *Config) Validate() error {
	if len(c.Auth.JWTKey) < 32 {
		return fmt.Errorf("auth.jwt_key must be at least 32 characters (got %d)", len(c.Auth.JWTKey))
	}
	if len(c.Journal.Secret) < 16 {
		return fmt.Errorf("journal.secret must be at least 16 characters (got %d)", len(c.Journal.Secret))
	}
	if c.Limiter.MaxFails <= 0 {
		return fmt.Errorf("limiter.max_fails must be > 0 (got %d)", c.Limiter.MaxFails)
	}
	return nil
}
