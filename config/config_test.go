package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "")
	for _, k := range []string{"PORT", "DB_NAME", "API_RATE_LIMIT", "API_RATE_WINDOW", "AUTH_RATE_LIMIT", "AUTH_RATE_WINDOW", "MAX_PHOTO_BYTES"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.EchoResetToken)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 100, cfg.APIRateLimit)
	assert.Equal(t, 15*time.Minute, cfg.APIRateWindow)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, time.Hour, cfg.AuthRateWindow)
	assert.Equal(t, int64(5<<20), cfg.MaxPhotoBytes)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Contains(t, cfg.DatabaseURL, "dbname=library")
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/lib")
	t.Setenv("WEB_ORIGIN", "https://a.example, https://b.example ,")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("API_RATE_LIMIT", "7")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("RESET_TOKEN_ECHO", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/lib", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.WebOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 7, cfg.APIRateLimit)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.True(t, cfg.EchoResetToken)
}

func Test_Load_UnsetEnvIsProduction(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.True(t, cfg.Production())
	assert.NotEqual(t, "dev-secret-change-me", cfg.JWTSecret)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RESET_TOKEN_ECHO", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.EchoResetToken)
}

func Test_Load_StagingRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func Test_Load_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func Test_SMTP_Enabled(t *testing.T) {
	assert.False(t, SMTP{}.Enabled())
	assert.False(t, SMTP{Host: "smtp.example.com"}.Enabled())
	assert.True(t, SMTP{Host: "smtp.example.com", From: "noreply@example.com"}.Enabled())
}
