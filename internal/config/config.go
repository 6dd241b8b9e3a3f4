// Package config loads the storefront session service configuration from the
// environment.
package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/czy882/sanitary-pads-shop/pkg/config"
)

// Config holds all configuration for the storefront session service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Commerce backend
	CartAPIBaseURL  string `env:"CART_API_BASE_URL" envDefault:"http://localhost:8888/wp-json/cocart/v2"`
	StoreAPIBaseURL string `env:"STORE_API_BASE_URL" envDefault:"http://localhost:8888/wp-json/wc/store/v1"`

	// SessionToken seeds the cart session token at startup. Empty means a
	// guest session until the token endpoint is called.
	SessionToken string `env:"CART_SESSION_TOKEN" envDefault:""`

	// Backend HTTP client
	BackendTimeout    time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	BackendMaxRetries int           `env:"BACKEND_MAX_RETRIES" envDefault:"0"`
	CircuitBreakerOn  bool          `env:"CIRCUIT_BREAKER_ENABLED" envDefault:"true"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	for name, raw := range map[string]string{
		"CART_API_BASE_URL":  cfg.CartAPIBaseURL,
		"STORE_API_BASE_URL": cfg.StoreAPIBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if cfg.BackendMaxRetries < 0 {
		return nil, fmt.Errorf("BACKEND_MAX_RETRIES must not be negative, got %d", cfg.BackendMaxRetries)
	}
	if cfg.TraceSampleRate < 0 || cfg.TraceSampleRate > 1 {
		return nil, fmt.Errorf("TRACE_SAMPLE_RATE must be in [0, 1], got %g", cfg.TraceSampleRate)
	}

	return cfg, nil
}
