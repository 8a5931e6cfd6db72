package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENV", "ALLOWED_ORIGINS", "FRONTEND_URL", "FRONTEND_URL_2", "AI_TIMEOUT", "AI_RATE_LIMIT", "OLLAMA_MODEL", "MONGODB_URI"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "phi:latest", cfg.OllamaModel)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 30, cfg.AIRateLimit)
	assert.Empty(t, cfg.MongoURI)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", " Production ")
	t.Setenv("ALLOWED_ORIGINS", "https://journal.example.com, http://localhost:3000,")
	t.Setenv("AI_TIMEOUT", "15s")
	t.Setenv("AI_RATE_LIMIT", "not-a-number")
	t.Setenv("HOST", "https://api.journal.example.com/")
	t.Setenv("TRUST_PROXY", "maybe")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://journal.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.AITimeout)
	assert.Equal(t, 30, cfg.AIRateLimit)
	assert.Equal(t, "https://api.journal.example.com/api/auth/github/callback", cfg.OAuthRedirectURL("github"))
	assert.Equal(t, "api.journal.example.com", cfg.APIHostname())
	assert.False(t, cfg.TrustProxy)
}

func TestOllamaBaseURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:11434":              "http://localhost:11434",
		"http://localhost:11434/":             "http://localhost:11434",
		"http://localhost:11434/api/generate": "http://localhost:11434",
		"http://ollama:11434/api/generate/":   "http://ollama:11434",
	}
	for in, want := range tests {
		cfg := &Config{OllamaURL: in}
		assert.Equal(t, want, cfg.OllamaBaseURL(), in)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("NEXTAUTH_SECRET", "")

	t.Setenv("ENV", "development")
	assert.NoError(t, Load().Validate())

	t.Setenv("ENV", "production")
	cfg := Load()
	assert.Equal(t, DefaultJWTSecret, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrDefaultJWTSecret)

	t.Setenv("JWT_SECRET", "a-real-secret")
	assert.NoError(t, Load().Validate())
}
