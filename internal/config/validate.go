package config

import (
	"errors"
	"strings"
)

type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate reports configuration problems without failing fast; startup
// treats Errors as fatal and logs Warnings.
func Validate(cfg *Config) ValidationResult {
	if cfg == nil {
		return ValidationResult{Errors: []string{"config is nil"}}
	}

	var errs []string
	var warns []string

	if strings.TrimSpace(cfg.Server.Address) == "" {
		errs = append(errs, "server.address is required")
	}

	if cfg.Cache.RedisURL == "" {
		errs = append(errs, "cache.redis_url (or REDIS_DSN) is required")
	}

	if cfg.Storage.DatabaseURL == "" {
		warns = append(warns, "storage.database_url is empty (user registry falls back to memory; accounts will not survive restarts)")
	}

	if cfg.Storage.MaxOpenConns < 0 || cfg.Storage.MaxIdleConns < 0 {
		errs = append(errs, "storage.max_open_conns and storage.max_idle_conns must be >= 0")
	}
	if cfg.Storage.MaxIdleConns > cfg.Storage.MaxOpenConns && cfg.Storage.MaxOpenConns > 0 {
		warns = append(warns, "storage.max_idle_conns exceeds max_open_conns; idle slots above the open cap are unusable")
	}

	if cfg.Storage.QueryTimeoutSeconds < 0 || cfg.Cache.OpTimeoutSeconds < 0 {
		errs = append(errs, "timeouts must be >= 0")
	}

	return ValidationResult{Errors: errs, Warnings: warns}
}

func validate(cfg *Config) error {
	result := Validate(cfg)
	if len(result.Errors) > 0 {
		return errors.New(strings.Join(result.Errors, "; "))
	}
	return nil
}
