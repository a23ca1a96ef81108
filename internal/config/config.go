package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the client reads from the environment.
type Config struct {
	// Remote invitation service
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Logging
	LogFile  string
	LogLevel string
}

// Load reads configuration from a .env file (when present) and the process
// environment. Missing keys fall back to defaults; Load never fails.
func Load() *Config {
	// A .env file is optional; plain environment variables work too.
	_ = godotenv.Load()

	return &Config{
		APIBaseURL:  normalizeURL(getEnv("VISITAS_API_URL", "http://localhost:8080")),
		HTTPTimeout: getEnvDuration("VISITAS_HTTP_TIMEOUT", 30*time.Second),
		LogFile:     getEnv("VISITAS_LOG_FILE", ""),
		LogLevel:    strings.ToLower(getEnv("VISITAS_LOG_LEVEL", "info")),
	}
}

// Level maps the configured log level name onto slog levels, defaulting to
// Info for anything unrecognized.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// normalizeURL strips duplicated protocol prefixes and guarantees a scheme,
// preferring https for anything that is not loopback.
func normalizeURL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	trimmed := rawURL
	trimmed = strings.TrimPrefix(trimmed, "http://")
	trimmed = strings.TrimPrefix(trimmed, "https://")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if strings.HasPrefix(trimmed, "localhost") || strings.HasPrefix(trimmed, "127.0.0.1") {
		return "http://" + trimmed
	}
	return "https://" + trimmed
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}
