package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "PORT", "POSTGRES_URI", "REDIS_URI", "MONGODB_URI", "MONGO_URI",
		"FRONTEND_URL", "FRONTEND_URL_2", "ALLOWED_ORIGINS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 20*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "5")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 5*time.Second, cfg.OpenAITimeout)
}

func TestLoad_AllowedOriginsList(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000")

	cfg := Load()

	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_BadTimeoutFallsBack(t *testing.T) {
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 20*time.Second, cfg.OpenAITimeout)
}
