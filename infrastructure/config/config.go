// Package config loads runtime configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime settings
type Config struct {
	Environment   string
	ServerAddress string

	AWSRegion string
	TableName string
	GSI1Name  string
	GSI2Name  string

	EventBusName string

	JWTSecret string
	JWTIssuer string

	LogLevel      string
	EnableMetrics bool
	EnableCORS    bool
}

// Load reads configuration from the environment, applying development
// defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),
		TableName: getEnv("TABLE_NAME", "calendar-app-data"),
		GSI1Name:  getEnv("GSI1_NAME", "GSI1"),
		GSI2Name:  getEnv("GSI2_NAME", "GSI2"),

		EventBusName: getEnv("EVENT_BUS_NAME", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getBoolEnv("ENABLE_METRICS", false),
		EnableCORS:    getBoolEnv("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely
func (c *Config) Validate() error {
	if c.TableName == "" {
		return fmt.Errorf("TABLE_NAME must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// IsProduction reports whether this is a production deployment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsLambda reports whether the process runs inside AWS Lambda
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
