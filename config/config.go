package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all backend configuration
type Config struct {
	Port     string `envconfig:"PORT" default:"8082"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	DevMode  bool   `envconfig:"DEV_MODE" default:"false"`
	DataDir  string `envconfig:"DATA_DIR" default:"data"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	RateLimit RateLimitConfig
	AI        AIConfig
	Cache     CacheConfig
	Fetch     FetchConfig
}

// RateLimitConfig controls the per-client request limiter
type RateLimitConfig struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"2"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// AIConfig holds the text-generation provider credentials and settings.
// Providers are tried in the order Google, OpenAI, Anthropic.
type AIConfig struct {
	GoogleAPIKey    string `envconfig:"GOOGLE_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	GeminiModel    string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash-exp"`
	OpenAIModel    string `envconfig:"OPENAI_MODEL" default:"gpt-4"`
	AnthropicModel string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-sonnet-20240229"`

	GeminiBaseURL    string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	OpenAIBaseURL    string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com"`
	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`

	Timeout      time.Duration `envconfig:"MODEL_TIMEOUT" default:"30s"`
	RateLimitRPM int           `envconfig:"MODEL_RATE_LIMIT_RPM" default:"60"`
	MaxTokens    int           `envconfig:"MODEL_MAX_TOKENS" default:"2000"`
}

// CacheConfig controls caching of model suggestions
type CacheConfig struct {
	TTL           time.Duration `envconfig:"SUGGESTION_CACHE_TTL" default:"24h"`
	MaxEntries    int           `envconfig:"SUGGESTION_CACHE_SIZE" default:"1000"`
	RedisAddress  string        `envconfig:"REDIS_ADDRESS"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
}

// FetchConfig controls page fetching for SEO analysis
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"FETCH_USER_AGENT" default:"SEOForge-Bot/2.0"`
}

// LoadEnv loads .env.development first and falls back to .env
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Load reads .env files and the environment into a Config
func Load() (*Config, error) {
	LoadEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express
func (c *Config) Validate() error {
	if c.RateLimit.RPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %v", c.RateLimit.RPS)
	}
	if c.RateLimit.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got %d", c.RateLimit.Burst)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.Fetch.Timeout)
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", c.AI.Timeout)
	}
	return nil
}

// HasModel reports whether any provider credential is configured
func (c AIConfig) HasModel() bool {
	return c.GoogleAPIKey != "" || c.OpenAIAPIKey != "" || c.AnthropicAPIKey != ""
}
