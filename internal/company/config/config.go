// Package config loads the service configuration from a YAML file, with
// secrets optionally supplied through the environment or a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gartstein/insightdesk/internal/company/completeness"
	"github.com/gartstein/insightdesk/internal/company/db"
	"github.com/gartstein/insightdesk/internal/company/enrichment"
	"github.com/gartstein/insightdesk/internal/company/models"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the binaries look for the config file.
const DefaultPath = "internal/company/config/config.yaml"

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`
	AuthPort int `yaml:"AUTH_PORT"`

	DBDriver   string `yaml:"DB_DRIVER"`
	DBHost     string `yaml:"DB_HOST"`
	DBPort     int    `yaml:"DB_PORT"`
	DBUser     string `yaml:"DB_USER"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBName     string `yaml:"DB_NAME"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`
	SQLitePath string `yaml:"SQLITE_PATH"`

	KafkaBrokers  []string `yaml:"KAFKA_BROKERS"`
	Topic         string   `yaml:"TOPIC"`
	ConsumerGroup string   `yaml:"CONSUMER_GROUP"`

	JWTSecret string        `yaml:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"TOKEN_TTL"`

	RequiredMin int `yaml:"COMPLETENESS_REQUIRED_MIN"`
	OptionalMin int `yaml:"COMPLETENESS_OPTIONAL_MIN"`

	OpenAIAPIKey      string        `yaml:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `yaml:"OPENAI_BASE_URL"`
	OpenAIModel       string        `yaml:"OPENAI_MODEL"`
	OpenAITemperature float64       `yaml:"OPENAI_TEMPERATURE"`
	OpenAIMaxTokens   int64         `yaml:"OPENAI_MAX_TOKENS"`
	OpenAITimeout     time.Duration `yaml:"OPENAI_TIMEOUT"`

	EnrichRequestsPerSecond float64       `yaml:"ENRICH_REQUESTS_PER_SECOND"`
	EnrichBurst             int           `yaml:"ENRICH_BURST"`
	EnrichMaxRetries        uint64        `yaml:"ENRICH_MAX_RETRIES"`
	EnrichInitialBackoff    time.Duration `yaml:"ENRICH_INITIAL_BACKOFF"`
}

// Default returns the settings used for keys missing from the file.
func Default() Config {
	return Config{
		GRPCPort:          9090,
		HTTPPort:          8080,
		AuthPort:          8081,
		DBDriver:          "postgres",
		DBPort:            5432,
		DBSSLMode:         "disable",
		Topic:             "company-events",
		ConsumerGroup:     "company-enrichment",
		TokenTTL:          24 * time.Hour,
		RequiredMin:       completeness.DefaultPolicy.RequiredMin,
		OptionalMin:       completeness.DefaultPolicy.OptionalMin,
		OpenAIModel:       "gpt-4o-mini",
		OpenAITemperature: 0.3,
		OpenAIMaxTokens:   4000,
		OpenAITimeout:     60 * time.Second,
		EnrichBurst:       1,
		EnrichMaxRetries:  3,
	}
}

// Load reads the YAML file at path over Default. Variables from the
// optional env files are loaded first; JWT_SECRET, DB_PASSWORD and
// OPENAI_API_KEY from the environment take precedence over the file.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	overrideFromEnv(&cfg.JWTSecret, "JWT_SECRET")
	overrideFromEnv(&cfg.DBPassword, "DB_PASSWORD")
	overrideFromEnv(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func overrideFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.GRPCPort <= 0 || c.HTTPPort <= 0:
		return errors.New("config: GRPC_PORT and HTTP_PORT must be positive")
	case c.JWTSecret == "":
		return errors.New("config: JWT_SECRET is required")
	case c.DBDriver != "postgres" && c.DBDriver != "sqlite":
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	case c.DBDriver == "sqlite" && c.SQLitePath == "":
		return errors.New("config: SQLITE_PATH is required for the sqlite driver")
	case c.RequiredMin < 0 || c.RequiredMin > len(models.RequiredFields):
		return fmt.Errorf("config: COMPLETENESS_REQUIRED_MIN must be within 0..%d", len(models.RequiredFields))
	case c.OptionalMin < 0 || c.OptionalMin > len(models.OptionalFields):
		return fmt.Errorf("config: COMPLETENESS_OPTIONAL_MIN must be within 0..%d", len(models.OptionalFields))
	}
	return nil
}

// Database returns the repository settings.
func (c *Config) Database() *db.Config {
	return &db.Config{
		Driver:     c.DBDriver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		SQLitePath: c.SQLitePath,
	}
}

// Policy returns the completeness thresholds.
func (c *Config) Policy() completeness.Policy {
	return completeness.Policy{RequiredMin: c.RequiredMin, OptionalMin: c.OptionalMin}
}

// OpenAI returns the completion client settings.
func (c *Config) OpenAI() enrichment.OpenAIConfig {
	return enrichment.OpenAIConfig{
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.OpenAIModel,
		Temperature: c.OpenAITemperature,
		MaxTokens:   c.OpenAIMaxTokens,
		Timeout:     c.OpenAITimeout,
	}
}

// Enrichment returns the throttling and retry settings.
func (c *Config) Enrichment() enrichment.Config {
	return enrichment.Config{
		RequestsPerSecond: c.EnrichRequestsPerSecond,
		Burst:             c.EnrichBurst,
		MaxRetries:        c.EnrichMaxRetries,
		InitialBackoff:    c.EnrichInitialBackoff,
	}
}
