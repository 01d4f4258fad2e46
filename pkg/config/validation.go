package config

import (
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// This function uses go-playground/validator for declarative validation
// via struct tags, with additional custom validation for complex rules
// that cannot be expressed in tags.
//
// Note: Log level normalization is handled in ApplyDefaults, not here.
// Validation accepts both uppercase and lowercase log levels.
//
// Returns an error describing validation failures.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if cfg.Metadata.Cache.Enabled {
		if cfg.Metadata.Cache.TTL <= 0 {
			return fmt.Errorf("metadata.cache: ttl must be positive when the cache is enabled")
		}
		if cfg.Metadata.Cache.MaxEntries <= 0 {
			return fmt.Errorf("metadata.cache: max_entries must be positive when the cache is enabled")
		}
	}

	// The item API and the metrics endpoint cannot share a port
	if cfg.Server.Metrics.Enabled {
		_, port, err := net.SplitHostPort(cfg.Server.Listen)
		if err != nil {
			return fmt.Errorf("server.listen: %w", err)
		}
		if port == fmt.Sprint(cfg.Server.Metrics.Port) {
			return fmt.Errorf("server.metrics.port: %d conflicts with server.listen %q", cfg.Server.Metrics.Port, cfg.Server.Listen)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		// Return the first validation error with context
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
