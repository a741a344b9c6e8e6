// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Payment  PaymentConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Address     string
	Password    string
	DB          int
	WorkflowTTL time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

type CatalogConfig struct {
	// Path overrides the embedded catalog when set.
	Path string
}

type PaymentConfig struct {
	ProviderURL    string
	ProviderAPIKey string
	WebhookSecret  string
	PriceCents     int64
	Currency       string
}

func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	config := &Config{
		Env: getEnvOrDefault("ENV", "development"),
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
			Host: getEnvOrDefault("HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URI:      os.Getenv("MONGODB_URI"),
			Database: getEnvOrDefault("MONGODB_DATABASE", "visacheck"),
		},
		Redis: RedisConfig{
			Address:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:    os.Getenv("REDIS_PASSWORD"),
			DB:          getEnvAsInt("REDIS_DB", 0),
			WorkflowTTL: time.Duration(getEnvAsInt("WORKFLOW_TTL_HOURS", 72)) * time.Hour,
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    os.Getenv("JWT_ISSUER"),
		},
		Catalog: CatalogConfig{
			Path: os.Getenv("CATALOG_PATH"),
		},
		Payment: PaymentConfig{
			ProviderURL:    os.Getenv("PAYMENT_PROVIDER_URL"),
			ProviderAPIKey: os.Getenv("PAYMENT_PROVIDER_API_KEY"),
			WebhookSecret:  os.Getenv("PAYMENT_WEBHOOK_SECRET"),
			PriceCents:     int64(getEnvAsInt("REPORT_PRICE_CENTS", 1999)),
			Currency:       getEnvOrDefault("REPORT_CURRENCY", "USD"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Payment.ProviderURL != "" && c.Payment.WebhookSecret == "" {
		return fmt.Errorf("PAYMENT_WEBHOOK_SECRET is required when PAYMENT_PROVIDER_URL is set")
	}
	if c.Payment.PriceCents <= 0 {
		return fmt.Errorf("REPORT_PRICE_CENTS must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
