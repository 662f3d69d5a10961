package config

import (
	"errors"
	"fmt"

	"github.com/OldStager01/decision-brain/pkg/validation"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.API.MaxBodyBytes < 0 {
		errs = append(errs, errors.New("api.max_body_bytes must not be negative"))
	}
	if c.API.Auth.Enabled {
		if err := validation.ValidateSecret(c.API.Auth.JWTSecret); err != nil {
			errs = append(errs, fmt.Errorf("api.auth.jwt_secret: %w", err))
		}
		if c.App.Mode == "production" && c.API.Auth.JWTSecret == DefaultJWTSecret {
			errs = append(errs, errors.New("api.auth.jwt_secret must be changed in production"))
		}
	}

	// Audit validation
	if c.Audit.Enabled {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required when audit is enabled"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required when audit is enabled"))
		}
		if c.Audit.BreakerFailures < 0 {
			errs = append(errs, errors.New("audit.breaker_failures must not be negative"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
