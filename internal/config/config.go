package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Backend names accepted by STORE_BACKEND, BLOB_BACKEND and SESSION_BACKEND.
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	BlobLocal = "local"
	BlobS3    = "s3"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	PublicBaseURL   string        `json:"public_base_url"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	SubmitTimeout   time.Duration `json:"submit_timeout"`

	// Document store
	StoreBackend string `json:"store_backend"`
	StoragePath  string `json:"storage_path"`
	SQLitePath   string `json:"sqlite_path"`
	DatabaseURL  string `json:"database_url"`

	// Redis configuration
	RedisURL    string `json:"redis_url"`
	RedisPrefix string `json:"redis_prefix"`

	// Blob store
	BlobBackend string `json:"blob_backend"`
	UploadPath  string `json:"upload_path"`
	MaxFileSize int64  `json:"max_file_size"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Region    string `json:"r2_region"`
	R2PublicURL string `json:"r2_public_url"`

	// Identity provider
	IdentityEndpoint string `json:"identity_endpoint"`
	IdentityAPIKey   string `json:"identity_api_key"`

	// Sessions
	SessionBackend string        `json:"session_backend"`
	SessionTTL     time.Duration `json:"session_ttl"`
	SessionCookie  string        `json:"session_cookie"`
	LoginRate      float64       `json:"login_rate"`
	LoginBurst     int           `json:"login_burst"`

	// Presentation
	DefaultLanguage string        `json:"default_language"`
	DefaultTheme    string        `json:"default_theme"`
	FeedCacheTTL    time.Duration `json:"feed_cache_ttl"`

	// Change events
	KafkaBrokers []string `json:"kafka_brokers"`
	KafkaTopic   string   `json:"kafka_topic"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogOutput string `json:"log_output"`
	LogPretty bool   `json:"log_pretty"`
}

// ConfigurationError lists every required variable that is missing or
// invalid for the selected backends.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required environment variables: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid values: "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads the configuration without validating it.
func FromEnv() *Config {
	port := getEnv("PORT", "8080")
	return &Config{
		// Server configuration
		Port:            port,
		Env:             getEnv("APP_ENV", "development"),
		PublicBaseURL:   strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		SubmitTimeout:   getEnvAsDuration("SUBMIT_TIMEOUT", 15*time.Second),

		// Document store
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreFile)),
		StoragePath:  getEnv("STORAGE_PATH", "./data"),
		SQLitePath:   getEnv("SQLITE_PATH", "./data/news.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "sevennews:"),

		// Blob store
		BlobBackend: strings.ToLower(getEnv("BLOB_BACKEND", BlobLocal)),
		UploadPath:  getEnv("UPLOAD_PATH", "./data/uploads"),
		MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10<<20), // 10MB

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", ""),
		R2Region:    getEnv("R2_REGION", "auto"),
		R2PublicURL: strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),

		// Identity provider
		IdentityEndpoint: getEnv("IDENTITY_ENDPOINT", "https://identitytoolkit.googleapis.com/v1"),
		IdentityAPIKey:   getEnv("IDENTITY_API_KEY", ""),

		// Sessions
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionMemory)),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 12*time.Hour),
		SessionCookie:  getEnv("SESSION_COOKIE", "sevennews_session"),
		LoginRate:      getEnvAsFloat("LOGIN_RATE", 0.2),
		LoginBurst:     getEnvAsInt("LOGIN_BURST", 5),

		// Presentation
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		DefaultTheme:    getEnv("DEFAULT_THEME", "light"),
		FeedCacheTTL:    getEnvAsDuration("FEED_CACHE_TTL", 30*time.Second),

		// Change events
		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "news-changes"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogOutput: getEnv("LOG_OUTPUT", "stdout"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}
}

// Validate reports every missing credential for the selected backends in a
// single *ConfigurationError.
func (c *Config) Validate() error {
	cerr := &ConfigurationError{}
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			cerr.Missing = append(cerr.Missing, name)
		}
	}

	require("IDENTITY_API_KEY", c.IdentityAPIKey)
	require("IDENTITY_ENDPOINT", c.IdentityEndpoint)

	switch c.StoreBackend {
	case StoreFile:
		require("STORAGE_PATH", c.StoragePath)
	case StoreSQLite:
		require("SQLITE_PATH", c.SQLitePath)
	case StorePostgres:
		require("DATABASE_URL", c.DatabaseURL)
	case StoreRedis:
		require("REDIS_URL", c.RedisURL)
	default:
		cerr.Invalid = append(cerr.Invalid, "STORE_BACKEND="+c.StoreBackend)
	}

	switch c.BlobBackend {
	case BlobLocal:
		require("UPLOAD_PATH", c.UploadPath)
	case BlobS3:
		require("R2_ENDPOINT", c.R2Endpoint)
		require("R2_ACCESS_KEY", c.R2AccessKey)
		require("R2_SECRET_ACCESS_KEY", c.R2SecretKey)
		require("R2_BUCKET", c.R2Bucket)
		require("R2_PUBLIC_URL", c.R2PublicURL)
	default:
		cerr.Invalid = append(cerr.Invalid, "BLOB_BACKEND="+c.BlobBackend)
	}

	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.StoreBackend != StoreRedis {
			require("REDIS_URL", c.RedisURL)
		}
	default:
		cerr.Invalid = append(cerr.Invalid, "SESSION_BACKEND="+c.SessionBackend)
	}

	if c.DefaultLanguage != "en" && c.DefaultLanguage != "ta" {
		cerr.Invalid = append(cerr.Invalid, "DEFAULT_LANGUAGE="+c.DefaultLanguage)
	}
	if c.DefaultTheme != "light" && c.DefaultTheme != "dark" {
		cerr.Invalid = append(cerr.Invalid, "DEFAULT_THEME="+c.DefaultTheme)
	}
	if c.MaxFileSize <= 0 {
		cerr.Invalid = append(cerr.Invalid, fmt.Sprintf("MAX_FILE_SIZE=%d", c.MaxFileSize))
	}
	for _, d := range []struct {
		env   string
		value time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", c.ShutdownTimeout},
		{"HTTP_TIMEOUT", c.HTTPTimeout},
		{"SUBMIT_TIMEOUT", c.SubmitTimeout},
		{"SESSION_TTL", c.SessionTTL},
	} {
		if d.value <= 0 {
			cerr.Invalid = append(cerr.Invalid, d.env+"="+d.value.String())
		}
	}

	if len(cerr.Missing) > 0 || len(cerr.Invalid) > 0 {
		return cerr
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Int("default", defaultVal).Msg("Invalid value, using default")
		return defaultVal
	}
	return value
}

func getEnvAsInt64(name string, defaultVal int64) int64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Int64("default", defaultVal).Msg("Invalid value, using default")
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Float64("default", defaultVal).Msg("Invalid value, using default")
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Bool("default", defaultVal).Msg("Invalid value, using default")
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Warn().Err(err).Str("name", name).Dur("default", defaultVal).Msg("Invalid value, using default")
		return defaultVal
	}
	return value
}

func getEnvAsList(name string) []string {
	var out []string
	for _, s := range strings.Split(getEnv(name, ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
