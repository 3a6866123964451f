package config

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime settings, populated from the environment.
type Config struct {
	Port        string        `env:"PORT, default=8080"`
	Env         string        `env:"ENV, default=development"`
	DatabaseURL string        `env:"DATABASE_URL, default=picshare.db"`
	JWTSecret   string        `env:"JWT_SECRET"`
	JWTTTL      time.Duration `env:"JWT_TTL, default=24h"`
	UploadsDir  string        `env:"UPLOADS_DIR, default=./uploads"`
	LogLevel    string        `env:"LOG_LEVEL, default=info"`
}

// Load reads a local .env file when present, then parses the environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET is empty")
	}
	return &cfg, nil
}
