package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// CORS configuration
	CORS CORSConfig

	// Payment gateway configuration
	Payment PaymentConfig

	// Notification configuration
	Notification NotificationConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// PaymentConfig holds payment gateway configuration
type PaymentConfig struct {
	MerchantKey    string // merchant key
	MerchantSecret string // merchant secret (never expose to clients)
	GatewayTimeout time.Duration
	GatewayLatency time.Duration // simulated processor latency (sandbox)
}

// NotificationConfig holds outbound notification configuration.
// AdminRecipients is the explicit set of operator contacts notified on
// refund failures; it is injected at startup instead of being hardcoded.
type NotificationConfig struct {
	SMSMode         string // "dev" or "production"
	SMSAPIURL       string
	SMSUsername     string
	SMSPassword     string
	SMSMask         string
	AdminRecipients []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Payment: PaymentConfig{
			MerchantKey:    getEnv("PAYMENT_MERCHANT_KEY", ""),
			MerchantSecret: getEnv("PAYMENT_MERCHANT_SECRET", ""),
			GatewayTimeout: time.Duration(getEnvAsInt("PAYMENT_GATEWAY_TIMEOUT", 30)) * time.Second,
			GatewayLatency: time.Duration(getEnvAsInt("PAYMENT_GATEWAY_LATENCY_MS", 150)) * time.Millisecond,
		},
		Notification: NotificationConfig{
			SMSMode:         getEnv("SMS_MODE", "dev"),
			SMSAPIURL:       getEnv("SMS_API_URL", "https://e-sms.dialog.lk/api/v2"),
			SMSUsername:     getEnv("SMS_USERNAME", ""),
			SMSPassword:     getEnv("SMS_PASSWORD", ""),
			SMSMask:         getEnv("SMS_MASK", ""),
			AdminRecipients: getEnvAsSlice("NOTIFICATION_ADMIN_RECIPIENTS", nil),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Server.Environment == "production" {
		if c.Payment.MerchantKey == "" || c.Payment.MerchantSecret == "" {
			return fmt.Errorf("PAYMENT_MERCHANT_KEY and PAYMENT_MERCHANT_SECRET are required in production")
		}

		if c.Notification.SMSMode == "production" {
			if c.Notification.SMSUsername == "" || c.Notification.SMSPassword == "" {
				return fmt.Errorf("SMS_USERNAME and SMS_PASSWORD are required for production SMS mode")
			}
		}
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
