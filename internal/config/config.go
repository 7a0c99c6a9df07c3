package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultAPIBase is Z.ai's general-purpose API endpoint.
	DefaultAPIBase = "https://api.z.ai/api/paas/v4"

	// CodingAPIBase is the endpoint for Z.ai coding-plan subscriptions.
	CodingAPIBase = "https://api.z.ai/api/coding/paas/v4"
)

type Config struct {
	APIBase       string
	Timeout       time.Duration
	LogLevel      string
	KeyAlias      string
	SecretBackend string
	SecretName    string
	AWSRegion     string
	OTLPEndpoint  string
}

func Load() (*Config, error) {
	// Optional; a missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		APIBase:       getEnv("ZAI_API_BASE", DefaultAPIBase),
		Timeout:       getDurationEnv("ZAI_TIMEOUT", 30*time.Second),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		KeyAlias:      getEnv("ZAI_KEY_ALIAS", "zai"),
		SecretBackend: getEnv("SECRET_BACKEND", "env"),
		SecretName:    getEnv("SECRET_NAME", ""),
		AWSRegion:     getEnv("AWS_REGION", ""),
		OTLPEndpoint:  getEnv("OTLP_ENDPOINT", ""),
	}

	// ZAI_API_BASE wins over the coding-plan toggle when both are set.
	if getEnv("ZAI_CODING_PLAN", "false") == "true" && os.Getenv("ZAI_API_BASE") == "" {
		cfg.APIBase = CodingAPIBase
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
