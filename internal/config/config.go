// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// PolicyMask persists a fixed apology when the completion backend fails.
	PolicyMask = "mask"
	// PolicySurface reports the completion failure to the caller instead.
	PolicySurface = "surface"
)

type Config struct {
	ServerPort  string `yaml:"server_port" env:"SERVER_PORT"`
	Environment string `yaml:"env" env:"ENV"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"LOG_FORMAT"`

	DBDriver    string `yaml:"db_driver" env:"DB_DRIVER"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`

	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	JWTTTL       time.Duration `yaml:"jwt_ttl" env:"JWT_TTL"`

	// Optional; when empty, logged-out tokens are tracked in memory.
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`

	AIProvider    string        `yaml:"ai_provider" env:"AI_PROVIDER"`
	GeminiAPIKey  string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel   string        `yaml:"gemini_model" env:"GEMINI_MODEL"`
	OpenAIAPIKey  string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `yaml:"openai_model" env:"OPENAI_MODEL"`
	AITimeout     time.Duration `yaml:"ai_timeout" env:"AI_TIMEOUT"`
	AIMaxRetries  int           `yaml:"ai_max_retries" env:"AI_MAX_RETRIES"`

	CompletionFailurePolicy string `yaml:"completion_failure_policy" env:"COMPLETION_FAILURE_POLICY"`

	AuthRateLimit  int           `yaml:"auth_rate_limit" env:"AUTH_RATE_LIMIT"`
	AuthRateWindow time.Duration `yaml:"auth_rate_window" env:"AUTH_RATE_WINDOW"`
}

// Load reads configuration from an optional YAML file, then environment
// variables (and a .env file outside production). Environment values win.
func Load() (*Config, error) {
	if !strings.EqualFold(os.Getenv("ENV"), "production") {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.ServerPort, "8080")
	setDefault(&c.LogLevel, "info")
	setDefault(&c.DBDriver, DriverSQLite)
	if c.DBDriver == DriverSQLite {
		setDefault(&c.DatabaseURL, "assistant.db")
	}
	setDefault(&c.AIProvider, ProviderGemini)
	setDefault(&c.GeminiModel, "gemini-1.5-flash")
	setDefault(&c.OpenAIModel, "gpt-4o-mini")
	setDefault(&c.CompletionFailurePolicy, PolicyMask)
	if !c.IsProduction() && c.JWTSecretKey == "" {
		log.Println("JWT_SECRET_KEY not set; using development secret")
		c.JWTSecretKey = "dev-only-insecure-secret"
	}

	if c.LogFormat == "" {
		c.LogFormat = "text"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = 24 * time.Hour
	}
	if c.AITimeout <= 0 {
		c.AITimeout = 60 * time.Second
	}
	if c.AIMaxRetries <= 0 {
		c.AIMaxRetries = 2
	}
	if c.AuthRateLimit <= 0 {
		c.AuthRateLimit = 5
	}
	if c.AuthRateWindow <= 0 {
		c.AuthRateWindow = 15 * time.Minute
	}
	c.AIProvider = strings.ToLower(c.AIProvider)
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.CompletionFailurePolicy = strings.ToLower(c.CompletionFailurePolicy)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		result = multierror.Append(result, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}
	if c.DatabaseURL == "" {
		result = multierror.Append(result, errors.New("DATABASE_URL is required"))
	}

	switch c.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		result = multierror.Append(result, fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.AIProvider))
	}

	switch c.CompletionFailurePolicy {
	case PolicyMask, PolicySurface:
	default:
		result = multierror.Append(result, fmt.Errorf("COMPLETION_FAILURE_POLICY must be %q or %q, got %q", PolicyMask, PolicySurface, c.CompletionFailurePolicy))
	}

	if c.IsProduction() {
		if c.JWTSecretKey == "" {
			result = multierror.Append(result, errors.New("JWT_SECRET_KEY is required in production"))
		}
		if c.AIProvider == ProviderGemini && c.GeminiAPIKey == "" {
			result = multierror.Append(result, errors.New("GEMINI_API_KEY is required in production"))
		}
		if c.AIProvider == ProviderOpenAI && c.OpenAIAPIKey == "" {
			result = multierror.Append(result, errors.New("OPENAI_API_KEY is required in production"))
		}
	}

	return result.ErrorOrNil()
}
