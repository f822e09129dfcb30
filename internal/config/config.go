package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	RedisURL        string
	ServerPort      string
	BaseURL         string
	FrontendURL     string
	OpenAIKey       string
	EngineModel     string
	EngineBaseURL   string
	EnableHSTS      bool
	SessionTTL      time.Duration
	RetentionMaxAge time.Duration
	SweepInterval   time.Duration
	RateLimit       string
	ServerDebugMode bool
	WorkerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		EngineModel:     getEnv("ENGINE_MODEL", ""),
		EngineBaseURL:   getEnv("ENGINE_BASE_URL", ""),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		SessionTTL:      getEnvDuration("SESSION_TTL", 30*time.Minute),
		RetentionMaxAge: getEnvDuration("RETENTION_MAX_AGE", 30*24*time.Hour),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 1*time.Hour),
		RateLimit:       getEnv("RATE_LIMIT", "5-S"),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode: getEnvBool("WORKER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
