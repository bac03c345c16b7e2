package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port string

	CatalogPath string
	TopK        int

	LLMProvider      string
	GeminiAPIKey     string
	GeminiModel      string
	OllamaURL        string
	OllamaModel      string
	LLMRatePerSecond float64

	ClassifierStrategy string

	SessionCapacity int
	SessionTTL      time.Duration

	ArchiveEnabled bool
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		CatalogPath: getEnv("CATALOG_PATH", "data/100mountains_dashboard.csv"),
		TopK:        getEnvInt("RECOMMEND_TOP_K", 5),

		LLMProvider:      getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:     getSecret("GEMINI_API_KEY", "GEMINI_API_KEY_FILE", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "qwen3-8b"),
		LLMRatePerSecond: getEnvFloat("LLM_RATE_PER_SECOND", 2),

		ClassifierStrategy: getEnv("CLASSIFIER_STRATEGY", "rule"),

		SessionCapacity: getEnvInt("SESSION_CAPACITY", 1024),
		SessionTTL:      getEnvDuration("SESSION_TTL", 2*time.Hour),

		ArchiveEnabled: getEnvBool("TURN_ARCHIVE_ENABLED", false),
		DBHost:         getEnv("DB_HOST", "trail-db"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "trail_user"),
		DBPassword:     getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "trail_password"),
		DBName:         getEnv("DB_NAME", "trail_db"),
	}
}

// DSN renders the archive database connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
