package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Payment gateway configuration
	PayMerchantID string
	PaySecret     string
	PayGatewayURL string
	PayNotifyURL  string

	// OAuth login configuration
	OAuthClientID     string
	OAuthClientSecret string
	OAuthBaseURL      string

	// Brevo email configuration (operational alerts)
	BrevoAPIKey    string
	BrevoFromEmail string
	AlertEmail     string

	// Session and rate limit configuration
	SessionExpireHours int
	RateLimitMinutes   int
	ServiceName        string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:               getEnv("PORT", "8080"),
		Mode:               getEnv("GIN_MODE", "debug"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PayMerchantID:      getEnv("PAY_MERCHANT_ID", ""),
		PaySecret:          getEnv("PAY_SECRET", ""),
		PayGatewayURL:      getEnv("PAY_GATEWAY_URL", ""),
		PayNotifyURL:       getEnv("PAY_NOTIFY_URL", ""),
		OAuthClientID:      getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret:  getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthBaseURL:       getEnv("OAUTH_BASE_URL", ""),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:     getEnv("BREVO_FROM_EMAIL", ""),
		AlertEmail:         getEnv("ALERT_EMAIL", ""),
		SessionExpireHours: getEnvInt("SESSION_EXPIRE_HOURS", 72),
		RateLimitMinutes:   getEnvInt("RATE_LIMIT_MINUTES", 1),
		ServiceName:        getEnv("SERVICE_NAME", "VIP Order Service"),
	}

	return nil
}

// Validate checks that the settings the payment callback path cannot run
// without are present. Called at startup so a misconfigured deploy fails
// fast instead of rejecting every notification with a signature error.
func Validate(cfg *Config) error {
	if cfg.PayMerchantID == "" {
		return errors.New("PAY_MERCHANT_ID is required")
	}
	if cfg.PaySecret == "" {
		return errors.New("PAY_SECRET is required")
	}
	if cfg.PayNotifyURL == "" {
		return errors.New("PAY_NOTIFY_URL is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
