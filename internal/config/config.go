package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         string
	Environment  string
	DatabaseURL  string
	StoreBackend string // "postgres" or "memory"
	CORSOrigins  string
	TablePrefix  string
	// Auth
	JWKSURL   string // Asymmetric verification when set
	JWTSecret string // HS256 fallback
	// Folder hierarchy
	MaxFolderDepth int
	// Log file (optional, stdout is always used)
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		StoreBackend:   getEnv("STORE_BACKEND", "postgres"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:5173"),
		TablePrefix:    getTablePrefix(env),
		JWKSURL:        getEnv("JWKS_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		MaxFolderDepth: getPositiveInt("MAX_FOLDER_DEPTH", DefaultMaxFolderDepth),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getPositiveInt("LOG_MAX_FILES", 10),
	}
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getPositiveInt parses an integer env var, falling back to defaultValue
// when unset, malformed, or < 1.
func getPositiveInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultValue
	}
	return n
}
