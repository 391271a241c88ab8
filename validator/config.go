package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LLM modes.
const (
	LLMModeOff    = "off"
	LLMModeOllama = "ollama"
	LLMModeOpenAI = "openai"
)

// LedgerOff disables the decision ledger.
const LedgerOff = "off"

// Config holds configuration for the validator service
type Config struct {
	RabbitMQHost string
	RabbitMQPort int
	RabbitMQUser string
	RabbitMQPass string

	StorageAPIURL string
	HTTPPort      string

	LLMMode       string
	OllamaAPIURL  string
	OllamaModel   string
	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	LLMCacheSize  int
	LLMCacheTTL   time.Duration

	AnalyzerTimeout time.Duration
	ThresholdsFile  string

	LedgerDriver string
	LedgerDSN    string
	StakeAmount  int

	JaegerEndpoint string
	LogLevel       string
	LogFormat      string
}

// LoadConfig loads configuration from environment variables, after
// reading a .env file from the working directory when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		RabbitMQHost: getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort: getEnvInt("RABBITMQ_PORT", 5672),
		RabbitMQUser: getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPass: getEnv("RABBITMQ_PASS", "guest"),

		StorageAPIURL: getEnv("STORAGE_API_URL", "http://localhost:8000"),
		HTTPPort:      getEnv("HTTP_PORT", "8080"),

		LLMMode:       getEnv("LLM_MODE", LLMModeOff),
		OllamaAPIURL:  getEnv("OLLAMA_API_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama2"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMCacheSize:  getEnvInt("LLM_CACHE_SIZE", 1000),
		LLMCacheTTL:   getEnvDuration("LLM_CACHE_TTL", "1h"),

		AnalyzerTimeout: getEnvDuration("ANALYZER_TIMEOUT", DefaultAnalyzerTimeout.String()),
		ThresholdsFile:  getEnv("THRESHOLDS_FILE", ""),

		LedgerDriver: getEnv("LEDGER_DRIVER", "sqlite3"),
		LedgerDSN:    getEnv("LEDGER_DSN", "ledger.db"),
		StakeAmount:  getEnvInt("STAKE_AMOUNT", 100),

		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.LLMMode {
	case LLMModeOff, LLMModeOllama:
	case LLMModeOpenAI:
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return errors.New("LLM_MODE=openai requires OPENAI_API_KEY or OPENAI_BASE_URL")
		}
	default:
		return fmt.Errorf("unknown LLM_MODE %q", c.LLMMode)
	}
	switch c.LedgerDriver {
	case LedgerOff, "sqlite3", "mysql":
	default:
		return fmt.Errorf("unknown LEDGER_DRIVER %q", c.LedgerDriver)
	}
	if c.StorageAPIURL == "" {
		return errors.New("STORAGE_API_URL is required")
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
