// Package config provides environment configuration for the summarizer.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/capitalize-ai/conversation-summarizer/internal/prompt"
	"github.com/capitalize-ai/conversation-summarizer/internal/retry"
	"github.com/capitalize-ai/conversation-summarizer/internal/summary"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// NATS settings
	NATSEnabled    bool
	NATSURL        string
	NATSCAFile     string
	NATSCertFile   string
	NATSKeyFile    string
	NATSToken      string
	SummarySubject string
	SummaryQueue   string

	// NATSConcurrency bounds the summary requests one process serves at once.
	NATSConcurrency int

	// JWT settings
	JWTSecret string

	// LLM settings
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultLLM      string

	// Summary pipeline
	Models             summary.ModelTable
	MinPastMessages    int
	MaxFastTokens      int
	SummaryMaxTokens   int
	SummaryTemperature float64
	SummaryTimeout     time.Duration
	Retry              retry.Policy

	// Prompt building
	PromptMaxPastMessages int
	PromptMaxPastTokens   int

	// Organizations
	OrganizationsFile string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// NATS
		NATSEnabled:    getBoolEnv("NATS_ENABLED", false),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:     getEnv("NATS_CA_FILE", ""),
		NATSCertFile:   getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:    getEnv("NATS_KEY_FILE", ""),
		NATSToken:      getEnv("NATS_TOKEN", ""),
		SummarySubject: getEnv("SUMMARY_SUBJECT", "summaries.request"),
		SummaryQueue:   getEnv("SUMMARY_QUEUE", "summarizers"),

		NATSConcurrency: getIntEnv("NATS_CONCURRENCY", 8),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// LLM
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		DefaultLLM:      getEnv("DEFAULT_LLM", "openai"),

		// Summary pipeline
		Models: summary.ModelTable{
			Capable:  getEnv("SUMMARY_CAPABLE_MODEL", summary.DefaultCapableModel),
			Fast:     getEnv("SUMMARY_FAST_MODEL", summary.DefaultFastModel),
			Fallback: getEnv("SUMMARY_FALLBACK_MODEL", summary.DefaultFallbackModel),
		},
		MinPastMessages:    getIntEnv("SUMMARY_MIN_PAST_MESSAGES", summary.DefaultMinPastMessages),
		MaxFastTokens:      getIntEnv("SUMMARY_MAX_FAST_TOKENS", summary.DefaultMaxFastTokens),
		SummaryMaxTokens:   getIntEnv("SUMMARY_MAX_TOKENS", summary.DefaultParams().MaxTokens),
		SummaryTemperature: getFloatEnv("SUMMARY_TEMPERATURE", summary.DefaultParams().Temperature),
		SummaryTimeout:     getDurationEnv("SUMMARY_TIMEOUT", 60*time.Second),
		Retry: retry.Policy{
			MaxAttempts: retryAttempts(getIntEnv("RETRY_MAX_ATTEMPTS", retry.DefaultPolicy().MaxAttempts)),
			BaseDelay:   getDurationEnv("RETRY_BASE_DELAY", retry.DefaultPolicy().BaseDelay),
			MaxDelay:    getDurationEnv("RETRY_MAX_DELAY", retry.DefaultPolicy().MaxDelay),
		},

		// Prompt
		PromptMaxPastMessages: getIntEnv("PROMPT_MAX_PAST_MESSAGES", prompt.DefaultMaxPastMessages),
		PromptMaxPastTokens:   getIntEnv("PROMPT_MAX_PAST_TOKENS", prompt.DefaultMaxPastTokens),

		// Organizations
		OrganizationsFile: getEnv("ORGANIZATIONS_FILE", ""),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Params returns the sampling parameters for summary calls.
func (c *Config) Params() summary.Params {
	return summary.Params{
		MaxTokens:   c.SummaryMaxTokens,
		Temperature: c.SummaryTemperature,
	}
}

// retryAttempts keeps the attempt count within 1 and the default ceiling of
// three. Non-positive values restore the default.
func retryAttempts(n int) int {
	ceiling := retry.DefaultPolicy().MaxAttempts
	if n < 1 || n > ceiling {
		return ceiling
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
