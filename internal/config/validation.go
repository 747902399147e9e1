package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("storage", validateStorage)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateStorage(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StorageJSON, StoragePostgres:
		return true
	default:
		return false
	}
}

// validateCrossField performs checks spanning more than one field
func validateCrossField(cfg *Config) error {
	if cfg.Pricing.ClampMin > cfg.Pricing.ClampMax {
		return fmt.Errorf("pricing clamp_min (%v) cannot exceed clamp_max (%v)", cfg.Pricing.ClampMin, cfg.Pricing.ClampMax)
	}

	if cfg.League.FieldSize > cfg.League.PoolSize {
		return fmt.Errorf("league field_size (%d) cannot exceed pool_size (%d)", cfg.League.FieldSize, cfg.League.PoolSize)
	}
	if cfg.League.PoolSize > cfg.League.MaxHorses {
		return fmt.Errorf("league pool_size (%d) cannot exceed max_horses (%d)", cfg.League.PoolSize, cfg.League.MaxHorses)
	}

	if cfg.UsesPostgres() {
		var missing []string
		if cfg.Database.Host == "" {
			missing = append(missing, "host")
		}
		if cfg.Database.Name == "" {
			missing = append(missing, "name")
		}
		if cfg.Database.User == "" {
			missing = append(missing, "user")
		}
		if cfg.Database.Port == 0 {
			missing = append(missing, "port")
		}
		if len(missing) > 0 {
			return fmt.Errorf("postgres storage requires database %s", strings.Join(missing, ", "))
		}
		if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Notify.RedisAddr != "" && cfg.Notify.RedisStream == "" {
		return fmt.Errorf("notify redis_stream is required when redis_addr is set")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&errMsg, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&errMsg, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "storage":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: json, postgres\n", field)
		case "oneof":
			fmt.Fprintf(&errMsg, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&errMsg, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg.String())
}
