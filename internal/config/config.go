package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	LogDir          string

	// Storage
	DatabaseDriver string // "postgres" or "sqlite"
	DatabaseURL    string
	SQLitePath     string

	// Image blobs (MinIO / S3 compatible)
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioPublicURL string

	// Optional backends
	MeiliURL    string
	MeiliAPIKey string
	RedisURL    string
	ChromePath  string // empty = search PATH

	// Editor
	AutosaveQuiet  time.Duration
	HistoryDepth   int
	SessionIdle    time.Duration
	ExtractTimeout time.Duration
	ExtractTTL     time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	jwksURL := ""
	if supabaseURL != "" {
		jwksURL = supabaseURL + "/auth/v1/.well-known/jwks.json"
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseJWKSURL: jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     getTablePrefix(env),
		LogDir:          getEnv("LOG_DIR", ""),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("SUPABASE_DB_URL", getEnv("DATABASE_URL", "")),
		SQLitePath:     getEnv("SQLITE_PATH", "notion.db"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "document-images"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioPublicURL: getEnv("MINIO_PUBLIC_URL", ""),

		MeiliURL:    getEnv("MEILI_URL", ""),
		MeiliAPIKey: getEnv("MEILI_API_KEY", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		ChromePath:  getEnv("CHROME_PATH", ""),

		AutosaveQuiet:  time.Duration(getEnvInt("AUTOSAVE_QUIET_MS", 1000)) * time.Millisecond,
		HistoryDepth:   getEnvInt("HISTORY_DEPTH", 100),
		SessionIdle:    time.Duration(getEnvInt("SESSION_IDLE_MINUTES", 30)) * time.Minute,
		ExtractTimeout: time.Duration(getEnvInt("EXTRACT_TIMEOUT_SECONDS", 15)) * time.Second,
		ExtractTTL:     time.Duration(getEnvInt("EXTRACT_CACHE_TTL_MINUTES", 60)) * time.Minute,
	}
}

// BlobStorageEnabled reports whether image uploads can be served.
func (c *Config) BlobStorageEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
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

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}
