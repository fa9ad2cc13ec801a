package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database      DatabaseConfig
	OpenAI        OpenAIConfig
	Storage       StorageConfig
	Extraction    ExtractionConfig
	Observability ObservabilityConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenAIConfig configures the vision inference client. An empty APIKey
// disables the vision path.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

type StorageConfig struct {
	Type      string
	LocalPath string
	MaxBytes  int64
}

type ExtractionConfig struct {
	RenderDPI     int
	VisionEnabled bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables, after applying any
// .env file in the working directory
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnvAsInt("POSTGRES_PORT", 5432),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			Database:        getEnv("POSTGRES_DB", "course-planner"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:        getEnvAsInt("POSTGRES_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("POSTGRES_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("POSTGRES_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("POSTGRES_MAX_CONN_IDLE_TIME", 10*time.Minute),
		},
		OpenAI: OpenAIConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", ""),
			Model:             getEnv("OPENAI_MODEL", "gpt-4o"),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
			RequestsPerSecond: getEnvAsFloat("OPENAI_REQUESTS_PER_SECOND", 1),
			Burst:             getEnvAsInt("OPENAI_BURST", 1),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			MaxBytes:  int64(getEnvAsInt("STORAGE_MAX_BYTES", 20<<20)),
		},
		Extraction: ExtractionConfig{
			RenderDPI:     getEnvAsInt("EXTRACTION_RENDER_DPI", 150),
			VisionEnabled: getEnvAsBool("EXTRACTION_VISION_ENABLED", true),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Extraction.RenderDPI <= 0 {
		return nil, errors.New("EXTRACTION_RENDER_DPI must be positive")
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return nil, errors.New("POSTGRES_MIN_CONNS must not exceed POSTGRES_MAX_CONNS")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// VisionAvailable reports whether the vision path has a credential and is
// switched on
func (c *Config) VisionAvailable() bool {
	return c.Extraction.VisionEnabled && c.OpenAI.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
