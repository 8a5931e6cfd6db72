package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

var ErrDefaultJWTSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	PostgresURI    string
	RedisURI       string
	MongoURI       string // optional: enables the AI request audit log
	JWTSecret      string
	Port           string
	Host           string // Raw HOST env (e.g. https://api.journal.example.com); used to build OAuth callbacks
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.
	TrustProxy     bool     // TRUST_PROXY: take the client address from X-Forwarded-For / X-Real-IP

	OllamaURL   string
	OllamaModel string
	AITimeout   time.Duration
	AIRateLimit int // enrichment requests per user per minute

	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		PostgresURI:        getEnv("POSTGRES_URI", getEnv("DATABASE_URL", "postgres://localhost:5432/journal?sslmode=disable")),
		RedisURI:           getEnv("REDIS_URI", "redis://localhost:6379/0"),
		MongoURI:           getEnv("MONGODB_URI", ""),
		JWTSecret:          getEnv("JWT_SECRET", getEnv("NEXTAUTH_SECRET", DefaultJWTSecret)),
		Port:               getEnv("PORT", "8080"),
		Host:               strings.TrimRight(getEnv("HOST", "http://localhost:8080"), "/"),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins:     allowedOrigins,
		Environment:        env,
		TrustProxy:         getBool("TRUST_PROXY", false),
		OllamaURL:          getEnv("OLLAMA_API_URL", "http://localhost:11434"),
		OllamaModel:        getEnv("OLLAMA_MODEL", "phi:latest"),
		AITimeout:          getDuration("AI_TIMEOUT", 60*time.Second),
		AIRateLimit:        getInt("AI_RATE_LIMIT", 30),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFile:            getEnv("LOG_FILE", ""),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// Validate reports settings the server must not start with.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == DefaultJWTSecret {
		return ErrDefaultJWTSecret
	}
	return nil
}

// OllamaBaseURL returns the server root. OLLAMA_API_URL used to point straight at
// /api/generate, so that suffix is stripped.
func (c *Config) OllamaBaseURL() string {
	u := strings.TrimRight(strings.TrimSpace(c.OllamaURL), "/")
	u = strings.TrimSuffix(u, "/api/generate")
	return strings.TrimRight(u, "/")
}

// APIHostname is HOST without scheme or port, for the production host check.
func (c *Config) APIHostname() string {
	u, err := url.Parse(c.Host)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// OAuthRedirectURL is the callback registered with the provider.
func (c *Config) OAuthRedirectURL(provider string) string {
	return c.Host + "/api/auth/" + provider + "/callback"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil && n > 0 {
		return n
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
