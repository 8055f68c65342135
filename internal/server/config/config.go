// Package config загружает настройки сервера из переменных окружения.
// Поддерживается .env файл для локальной разработки.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// .env подхватывается если есть, иначе молча идем дальше
	_ = godotenv.Load()
}

// Config holds all server configuration loaded from environment variables.
type Config struct {
	Server      ServerConfig
	App         AppConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Cache       CacheConfig
	Leaderboard LeaderboardConfig
	Sweep       SweepConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DatabaseConfig holds storage settings.
// Dialect выбирает бэкенд: sqlite для одиночного инстанса, postgres для продакшена.
type DatabaseConfig struct {
	Dialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	DSN     string `envconfig:"DB_DSN" default:"stablehand.db"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"720h"`
}

// RateLimitConfig holds per-IP rate limit settings.
// Auth-лимит строже: bcrypt дорогой и перебор паролей должен упираться в 429.
type RateLimitConfig struct {
	AuthRate   int           `envconfig:"RATE_LIMIT_AUTH" default:"10"`
	AuthWindow time.Duration `envconfig:"RATE_LIMIT_AUTH_WINDOW" default:"1m"`
	GameRate   int           `envconfig:"RATE_LIMIT_GAME" default:"60"`
	GameWindow time.Duration `envconfig:"RATE_LIMIT_GAME_WINDOW" default:"1m"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Backend string `envconfig:"CACHE_BACKEND" default:"memory"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LeaderboardConfig holds leaderboard snapshot settings.
type LeaderboardConfig struct {
	TTL   time.Duration `envconfig:"LEADERBOARD_TTL" default:"30s"`
	Limit int           `envconfig:"LEADERBOARD_LIMIT" default:"10"`
}

// SweepConfig holds background cleanup settings.
type SweepConfig struct {
	Interval time.Duration `envconfig:"TOKEN_SWEEP_INTERVAL" default:"1h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SlogLevel переводит текстовый уровень в slog.Level.
// Неизвестный уровень трактуем как info, сервер не должен падать из-за опечатки.
func (a *AppConfig) SlogLevel() slog.Level {
	switch a.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Секрет для HMAC подписи токенов обязателен, дефолта быть не может
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
