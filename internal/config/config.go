package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	// Fetcher retry policy - bounded by design, see internal/fetch
	FetchAttempts int
	FetchDelay    time.Duration
	FetchTimeout  time.Duration
	// Image handling
	KeepImagesIn []string // parent tags allowed to keep inline images
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:   env,
		FetchAttempts: getEnvInt("FETCH_ATTEMPTS", 3),
		FetchDelay:    time.Duration(getEnvInt("FETCH_DELAY_SECONDS", 2)) * time.Second,
		FetchTimeout:  time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second,
		KeepImagesIn:  splitList(getEnv("KEEP_IMAGES_IN", "")),
		Debug:         getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
