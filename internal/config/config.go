package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every externally supplied setting. It is built once at
// startup and passed explicitly into constructors; nothing reads the
// environment after LoadConfig returns.
type Config struct {
	Port        string
	MongoURI    string
	DBName      string
	RedisURI    string
	JWTSecret   string
	TokenExpiry time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// NotificationTTL is how long a delivered notification stays in a
	// connected client's display ring before it is expired and its
	// document deleted best-effort.
	NotificationTTL time.Duration
	// NotificationRetention bounds how long undelivered notification
	// documents survive before the hourly sweep removes them.
	NotificationRetention time.Duration

	AllowedOrigins []string
}

// LoadConfig reads configuration from the environment, with .env support.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		MongoURI:              getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:                getEnv("DB_NAME", "statuscircle"),
		RedisURI:              getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:             getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:           getDurationEnv("TOKEN_EXPIRY_HOURS", 72) * time.Hour,
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		NotificationTTL:       time.Duration(getIntEnv("NOTIFICATION_TTL_MS", 8000)) * time.Millisecond,
		NotificationRetention: getDurationEnv("NOTIFICATION_RETENTION_HOURS", 24) * time.Hour,
		AllowedOrigins:        getListEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		logrus.Warnf("Invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getDurationEnv(key string, fallback int) time.Duration {
	return time.Duration(getIntEnv(key, fallback))
}

func getListEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
