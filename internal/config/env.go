package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultPort         = "8080"
	defaultLocale       = "en"
	defaultRateLimit    = "120-M"
	defaultRedisChannel = "eventnotify:notifications"
	defaultEndpoint     = "http://localhost:8080"
)

// loads configuration from environment variables, reading .env first when present
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds a config from getenv, applying defaults and checking required values
func FromEnv(getenv func(string) string) (*Config, error) {
	jwtSecret := getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	environment := getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	port := getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	locale := getenv("DEFAULT_LOCALE")
	if locale == "" {
		locale = defaultLocale
	}

	rateLimit := getenv("RATE_LIMIT")
	if rateLimit == "" {
		rateLimit = defaultRateLimit
	}

	redisChannel := getenv("REDIS_CHANNEL")
	if redisChannel == "" {
		redisChannel = defaultRedisChannel
	}

	return &Config{
		Port:           port,
		Environment:    environment,
		LogLevel:       getenv("LOG_LEVEL"),
		DefaultLocale:  locale,
		JWTSecret:      jwtSecret,
		RedisURL:       getenv("REDIS_URL"),
		RedisChannel:   redisChannel,
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS")),
		RateLimit:      rateLimit,
		RulesFile:      getenv("RULES_FILE"),
	}, nil
}

// splits a comma separated list, dropping blanks
func splitList(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
