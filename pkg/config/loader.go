// Package config loads env-tagged configuration structs for the storefront
// session service.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the process environment using `env` struct tags:
//
//	type Config struct {
//	    HTTPPort       int    `env:"HTTP_PORT" envDefault:"8080"`
//	    CartAPIBaseURL string `env:"CART_API_BASE_URL"`
//	}
//
// Callers layer their own semantic validation (port ranges, URL shapes) on
// top; this only handles parsing.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment config: %w", err)
	}
	return nil
}
