package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	APIBaseURL      string        `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8000/api"`
	APITimeout      time.Duration `yaml:"api_timeout" env:"API_TIMEOUT" env-default:"10s"`
	TokenExpiration time.Duration `yaml:"token_expiration" env:"TOKEN_EXPIRATION" env-default:"168h"`
	DBPath          string        `yaml:"db_path" env:"DB_PATH" env-default:"./taskboard.db"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3001"`
	JWTSecret       string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Language        string        `yaml:"language" env:"LANGUAGE" env-default:"en"`
	PersistDebounce time.Duration `yaml:"persist_debounce" env:"PERSIST_DEBOUNCE" env-default:"300ms"`
}

// LoadConfig reads envFile into the environment when it exists, then the
// YAML file at configPath, falling back to the environment alone when
// configPath is empty or missing.
func LoadConfig(envFile, configPath string) (Config, error) {
	var cfg Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return cfg, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return cfg, fmt.Errorf("cannot read env: %w", err)
		}
	}
	return cfg, nil
}
