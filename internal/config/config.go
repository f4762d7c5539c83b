package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration for the server, worker and CLI.
type Config struct {
	// Server
	Port               int      `env:"PORT" envDefault:"8080"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	StaticDir          string   `env:"STATIC_DIR"`

	// Analysis
	ResponseVariant  string `env:"RESPONSE_VARIANT" envDefault:"scenarios"` // "scenarios" or "markdown"
	MaxUseCaseLength int    `env:"MAX_USE_CASE_LENGTH" envDefault:"5000"`
	MaxUploadSize    int64  `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// LLM
	LLMProvider  string        `env:"LLM_PROVIDER" envDefault:"gemini"` // "gemini" or "openai"
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	OpenAIKey    string        `env:"OPENAI_API_KEY"`
	LLMModel     string        `env:"LLM_MODEL" envDefault:"auto"` // model id, or "auto" to discover
	ModelFamily  string        `env:"MODEL_FAMILY"` // empty picks the provider's own family
	LLMBaseURL   string        `env:"LLM_BASE_URL"`
	LLMTimeout   time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	LLMRetries   int           `env:"LLM_MAX_RETRIES" envDefault:"0"`
	LLMRetryBase time.Duration `env:"LLM_RETRY_BASE" envDefault:"500ms"`

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"none"` // "none" or "postgres"
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" or "nats"
	QueueURL      string `env:"QUEUE_URL"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"1h"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// APIKey returns the credential for the configured LLM provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "openai" {
		return c.OpenAIKey
	}
	return c.GeminiAPIKey
}

// Family returns the model family auto discovery matches against. An unset
// MODEL_FAMILY follows the provider: "gpt" for OpenAI, "gemini" otherwise.
func (c Config) Family() string {
	if c.ModelFamily != "" {
		return c.ModelFamily
	}
	if c.LLMProvider == "openai" {
		return "gpt"
	}
	return "gemini"
}
