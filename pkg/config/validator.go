package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	envNamePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	filePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("env_name", validateEnvName); err != nil {
		return err
	}
	return v.RegisterValidation("file_prefix", validateFilePrefix)
}

func validateEnvName(fl validator.FieldLevel) bool {
	return envNamePattern.MatchString(fl.Field().String())
}

// validateFilePrefix rejects prefixes that would escape the artifact directory
func validateFilePrefix(fl validator.FieldLevel) bool {
	prefix := fl.Field().String()
	if len(prefix) > 100 {
		return false
	}
	return filePrefixPattern.MatchString(prefix)
}
