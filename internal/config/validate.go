package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// JWT secrets
	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.RefreshSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	// LLM provider keys: both debate passes need their own credential
	if c.LLM.BuilderAPIKey == "" {
		errs = append(errs, "LLM_BUILDER_API_KEY is required")
	}
	if c.LLM.AuditorAPIKey == "" {
		errs = append(errs, "LLM_AUDITOR_API_KEY is required")
	}

	// Admin reporting surface refuses to start without credentials
	if c.Admin.Username == "" || c.Admin.Password == "" {
		errs = append(errs, "ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, audit event trail disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
