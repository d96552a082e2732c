// Package config holds the explicit application configuration. It is built
// once in main and passed into services, so missing-configuration failures
// are unit-testable without touching the process environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names for required configuration. Operations validate
// the subset they need and report every missing name at once.
const (
	EnvStripeSecretKey = "STRIPE_SECRET_KEY"
	EnvAppBaseURL      = "APP_BASE_URL"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

// Config is the full application configuration
type Config struct {
	// Port the Fiber app listens on
	Port string
	// MetricsPort serves prometheus metrics and health on a side listener
	MetricsPort string

	// StripeSecretKey authenticates payment-provider calls
	StripeSecretKey string
	// AppBaseURL is the public base URL for checkout success/cancel targets
	AppBaseURL string

	// GeminiAPIKey authenticates generation-engine calls
	GeminiAPIKey string
	// GeminiModel overrides the default generation model
	GeminiModel string

	// RedisAddr, when set, enables the atomic idempotency store. Without it
	// the provider-metadata fallback is used.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// UseFakeProvider swaps Stripe for the in-memory fake (local development)
	UseFakeProvider bool

	// EngineTimeout bounds a single generation call
	EngineTimeout time.Duration
}

// Load reads configuration from the environment with defaults applied
func Load() *Config {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		StripeSecretKey: os.Getenv(EnvStripeSecretKey),
		AppBaseURL:      os.Getenv(EnvAppBaseURL),
		GeminiAPIKey:    os.Getenv(EnvGeminiAPIKey),
		GeminiModel:     os.Getenv("GEMINI_MODEL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		UseFakeProvider: os.Getenv("USE_FAKE_PROVIDER") == "true",
		EngineTimeout:   60 * time.Second,
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		if n, err := strconv.Atoi(db); err == nil {
			cfg.RedisDB = n
		}
	}
	if t := os.Getenv("ENGINE_TIMEOUT_SECONDS"); t != "" {
		if n, err := strconv.Atoi(t); err == nil && n > 0 {
			cfg.EngineTimeout = time.Duration(n) * time.Second
		}
	}

	return cfg
}

// Missing returns the subset of the given names whose values are unset
func (c *Config) Missing(names ...string) []string {
	var missing []string
	for _, name := range names {
		if c.value(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func (c *Config) value(name string) string {
	switch name {
	case EnvStripeSecretKey:
		return c.StripeSecretKey
	case EnvAppBaseURL:
		return c.AppBaseURL
	case EnvGeminiAPIKey:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
