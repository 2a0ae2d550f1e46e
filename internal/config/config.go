package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Credential store backend constants
const (
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// OAuth client registration (assigned by the provider)
	ClientID     string
	ClientSecret string

	// Authorization request settings
	Scope       string
	RedirectURI string

	// Provider endpoints
	AuthorizationEndpoint string
	TokenEndpoint         string
	APIEndpoint           string

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Credential store
	StoreBackend  string // "memory" or "redis"
	CredentialTTL time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Outbound HTTP client settings
	OAuthTimeout            time.Duration // timeout for token and resource requests
	OAuthInsecureSkipVerify bool          // skip TLS verification (dev/testing only)

	// Metrics
	MetricsEnabled bool

	// Deployment
	IsProduction bool
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":3000"),
		BaseURL:    getEnv("BASE_URL", "http://localhost:3000"),

		ClientID:     getEnv("OAUTH_CLIENT_ID", ""),
		ClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),

		Scope:       getEnv("OAUTH_SCOPE", "status"),
		RedirectURI: getEnv("OAUTH_REDIRECT_URI", "http://localhost:3000/callback"),

		AuthorizationEndpoint: getEnv(
			"OAUTH_AUTHORIZATION_ENDPOINT",
			"https://orbitar.local/oauth2/authorize",
		),
		TokenEndpoint: getEnv(
			"OAUTH_TOKEN_ENDPOINT",
			"https://api.orbitar.local/api/v1/oauth2/token",
		),
		APIEndpoint: getEnv("OAUTH_API_ENDPOINT", "https://api.orbitar.local/api/v1/status"),

		SessionSecret: getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 3600),

		StoreBackend:  getEnv("CREDENTIAL_STORE_BACKEND", StoreBackendMemory),
		CredentialTTL: getEnvDuration("CREDENTIAL_TTL", 24*time.Hour),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),

		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		IsProduction: getEnv("GIN_MODE", "") == "release",
	}
}

// Validate checks that the configuration can actually drive an
// authorization flow.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("OAUTH_CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("OAUTH_CLIENT_SECRET is required")
	}
	if c.RedirectURI == "" {
		return fmt.Errorf("OAUTH_REDIRECT_URI is required")
	}
	switch c.StoreBackend {
	case StoreBackendMemory:
	case StoreBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf(
				"CREDENTIAL_STORE_BACKEND=%q requires REDIS_ADDR", StoreBackendRedis,
			)
		}
	default:
		return fmt.Errorf(
			"CREDENTIAL_STORE_BACKEND must be %q or %q, got %q",
			StoreBackendMemory, StoreBackendRedis, c.StoreBackend,
		)
	}
	if c.CredentialTTL <= 0 {
		return fmt.Errorf("CREDENTIAL_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
