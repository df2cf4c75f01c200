package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/sevennews/internal/config"

	"github.com/stretchr/testify/require"
)

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IDENTITY_API_KEY", "key")
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("BLOB_BACKEND", "local")
	t.Setenv("SESSION_BACKEND", "memory")
}

func TestFromEnv_Defaults(t *testing.T) {
	baseEnv(t)

	cfg := config.FromEnv()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	require.Equal(t, 15*time.Second, cfg.SubmitTimeout)
	require.Equal(t, "en", cfg.DefaultLanguage)
	require.Equal(t, int64(10<<20), cfg.MaxFileSize)
	require.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("SUBMIT_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("PUBLIC_BASE_URL", "https://7news.example/")
	t.Setenv("DEFAULT_LANGUAGE", "ta")

	cfg := config.FromEnv()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "https://7news.example", cfg.PublicBaseURL)
	require.Equal(t, "ta", cfg.DefaultLanguage)
}

func TestFromEnv_InvalidDurationFallsBack(t *testing.T) {
	baseEnv(t)
	t.Setenv("SESSION_TTL", "forever")

	cfg := config.FromEnv()
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
}

func TestValidate_MissingIdentityKey(t *testing.T) {
	baseEnv(t)
	t.Setenv("IDENTITY_API_KEY", "")

	err := config.FromEnv().Validate()
	require.Error(t, err)

	var cerr *config.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.Contains(t, cerr.Missing, "IDENTITY_API_KEY")
}

func TestValidate_S3CredentialsReportedTogether(t *testing.T) {
	baseEnv(t)
	t.Setenv("BLOB_BACKEND", "s3")
	t.Setenv("R2_BUCKET", "news")

	err := config.FromEnv().Validate()

	var cerr *config.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	require.ElementsMatch(t, []string{"R2_ENDPOINT", "R2_ACCESS_KEY", "R2_SECRET_ACCESS_KEY", "R2_PUBLIC_URL"}, cerr.Missing)
	require.Contains(t, err.Error(), "R2_ENDPOINT")
}

func TestValidate_BackendSpecificCredentials(t *testing.T) {
	tests := []struct {
		backend string
		missing string
	}{
		{backend: "postgres", missing: "DATABASE_URL"},
		{backend: "redis", missing: "REDIS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			baseEnv(t)
			t.Setenv("STORE_BACKEND", tt.backend)
			t.Setenv("DATABASE_URL", "")
			t.Setenv("REDIS_URL", "")

			var cerr *config.ConfigurationError
			require.True(t, errors.As(config.FromEnv().Validate(), &cerr))
			require.Equal(t, []string{tt.missing}, cerr.Missing)
		})
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORE_BACKEND", "firestore")

	var cerr *config.ConfigurationError
	require.True(t, errors.As(config.FromEnv().Validate(), &cerr))
	require.Equal(t, []string{"STORE_BACKEND=firestore"}, cerr.Invalid)
}

func TestValidate_InvalidLanguage(t *testing.T) {
	baseEnv(t)
	t.Setenv("DEFAULT_LANGUAGE", "fr")

	err := config.FromEnv().Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "DEFAULT_LANGUAGE=fr")
}

func TestValidate_NonPositiveDurations(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{env: "SUBMIT_TIMEOUT", value: "0s"},
		{env: "SESSION_TTL", value: "-1h"},
		{env: "HTTP_TIMEOUT", value: "0s"},
		{env: "SHUTDOWN_TIMEOUT", value: "-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			baseEnv(t)
			t.Setenv(tt.env, tt.value)

			var cerr *config.ConfigurationError
			require.True(t, errors.As(config.FromEnv().Validate(), &cerr))
			require.Empty(t, cerr.Missing)
			require.Len(t, cerr.Invalid, 1)
			require.True(t, strings.HasPrefix(cerr.Invalid[0], tt.env+"="), cerr.Invalid[0])
		})
	}

	baseEnv(t)
	t.Setenv("FEED_CACHE_TTL", "0s")
	require.NoError(t, config.FromEnv().Validate())
}
