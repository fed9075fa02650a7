package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/orchestra-ai/orchestra/internal/types"
)

var validate = validator.New()

// Validate checks the configuration against struct tags plus the
// cross-field rules tags cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "configuration is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		validationErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return types.WrapError(types.CONFIG_VALIDATION_FAILED, "validation error", err)
		}
		messages := make([]string, len(validationErrs))
		for i, e := range validationErrs {
			messages[i] = formatFieldError(e)
		}
		return types.NewError(types.CONFIG_VALIDATION_FAILED,
			"invalid configuration: "+strings.Join(messages, "; "))
	}

	seen := make(map[string]bool, len(cfg.Workers))
	for _, w := range cfg.Workers {
		if seen[w.Role] {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				"duplicate worker role").WithContext("role", w.Role)
		}
		seen[w.Role] = true
	}

	return nil
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s is required", e.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Namespace(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Namespace(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.Namespace(), e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Namespace())
	default:
		return fmt.Sprintf("%s failed %s validation", e.Namespace(), e.Tag())
	}
}
