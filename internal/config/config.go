package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string   `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost        string   `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string   `env:"DB_PORT" envDefault:"3306"`
	DBUser        string   `env:"DB_USER" envDefault:"crmuser"`
	DBPassword    string   `env:"DB_PASSWORD" envDefault:"crmpassword"`
	DBName        string   `env:"DB_NAME" envDefault:"crm"`
	DBPath        string   `env:"DB_PATH" envDefault:"crm.db"`
	SessionStore  string   `env:"SESSION_STORE" envDefault:"redis"`
	RedisHost     string   `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string   `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string   `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	GinMode       string   `env:"GIN_MODE" envDefault:"debug"`
	ListenAddr    string   `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string   `env:"LOG_FORMAT" envDefault:"console"`
	OpenAIAPIKey  string   `env:"OPENAI_API_KEY"`
	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:","`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.DBDriver = strings.ToLower(cfg.DBDriver)
	cfg.SessionStore = strings.ToLower(cfg.SessionStore)
	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
