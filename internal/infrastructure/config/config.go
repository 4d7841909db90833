package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`

	Session   SessionConfig
	Backend   BackendConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Workspace WorkspaceConfig

	// LoginRatePerMinute throttles the auth endpoints per client IP. Zero disables it.
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE, default=30"`
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,    default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,  default=false"`
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=http://localhost:8000"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=15s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// WorkspaceConfig bounds the per-session cache of admin list controllers.
type WorkspaceConfig struct {
	Size int           `env:"WORKSPACE_SIZE, default=512"`
	TTL  time.Duration `env:"WORKSPACE_TTL,  default=30m"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
