package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API process
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	DatabaseURL     string        `yaml:"database_url"`
	JWTSecret       string        `yaml:"jwt_secret"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	RatesFile       string        `yaml:"rates_file"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// DefaultServerConfig returns the configuration used for local development
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		DatabaseURL:     "sqlite://courtage.db",
		GeminiModel:     "gemini-2.5-flash",
		AllowedOrigins:  []string{"http://localhost:5173"},
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadBytes:  10 << 20,
	}
}

// LoadServerConfig reads an optional YAML file then applies environment
// overrides: COURTAGE_ADDR, DATABASE_URL, COURTAGE_JWT_SECRET,
// GEMINI_API_KEY, COURTAGE_RATES and COURTAGE_ALLOWED_ORIGINS (comma separated).
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read server config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse server config: %w", err)
		}
	}

	applyEnv(&cfg.Addr, "COURTAGE_ADDR")
	applyEnv(&cfg.DatabaseURL, "DATABASE_URL")
	applyEnv(&cfg.JWTSecret, "COURTAGE_JWT_SECRET")
	applyEnv(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	applyEnv(&cfg.RatesFile, "COURTAGE_RATES")
	if v := os.Getenv("COURTAGE_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks settings required to serve requests
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("jwt secret must be at least 16 characters")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}
	return nil
}

func applyEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
