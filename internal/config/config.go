package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"datalens/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig   `validate:"required"`
	Data     DataConfig     `validate:"required"`
	Analysis AnalysisConfig `validate:"required"`
	Metrics  MetricsConfig
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory stores.
type DatabaseConfig struct {
	URL             string `validate:"omitempty,url"`
	MaxOpenConns    int    `validate:"gte=0"`
	MaxIdleConns    int    `validate:"gte=0"`
	ConnMaxLifetime time.Duration
}

// AIConfig holds AI/LLM related settings. Without a key the rule-based
// narrator writes the insights section.
type AIConfig struct {
	OpenAIKey   string
	Model       string  `validate:"required_with=OpenAIKey"`
	BaseURL     string  `validate:"omitempty,url"`
	MaxTokens   int     `validate:"gte=0"`
	Temperature float64 `validate:"gte=0,lte=2"`
	Timeout     time.Duration
	MaxRetries  int `validate:"gte=0,lte=5"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// DataConfig holds dataset file settings
type DataConfig struct {
	Dir          string `validate:"required"`
	DefaultSheet string
	MaxRows      int `validate:"gte=0"`
}

// AnalysisConfig bounds report assembly
type AnalysisConfig struct {
	Timeout time.Duration `validate:"gt=0"`
	Workers int           `validate:"gte=1,lte=64"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Path    string `validate:"required_if=Enabled true"`
}

var validate = validator.New()

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: *loadDatabaseConfig(),
		AI:       *loadAIConfig(),
		Server:   *loadServerConfig(),
		Data:     *loadDataConfig(),
		Analysis: *loadAnalysisConfig(),
		Metrics:  *loadMetricsConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// HasDatabase reports whether a postgres connection is configured.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasLLM reports whether an LLM narrator can be built.
func (c *Config) HasLLM() bool { return c.AI.OpenAIKey != "" }

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4.1-mini"),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 600),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.2),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 30*time.Second),
		MaxRetries:  getEnvIntOrDefault("LLM_MAX_RETRIES", 2),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Dir:          getEnvOrDefault("DATA_DIR", "./data"),
		DefaultSheet: os.Getenv("DATA_SHEET"),
		MaxRows:      getEnvIntOrDefault("DATA_MAX_ROWS", 0),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		Timeout: getEnvDurationOrDefault("ANALYSIS_TIMEOUT", 2*time.Minute),
		Workers: getEnvIntOrDefault("ANALYSIS_WORKERS", 4),
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
		Path:    getEnvOrDefault("METRICS_PATH", "/metrics"),
	}
}

func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return errors.ConfigInvalid(fe.Namespace() + " failed " + fe.Tag() + " validation")
		}
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
