package bconfig

import (
	"fmt"
)

// ConfigError reports a missing or invalid configuration property
type ConfigError struct {
	Field   string
	Message string
}

// NewConfigError creates a ConfigError for the given YAML property name
func NewConfigError(field string, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf(".%s: %s", err.Field, err.Message)
}
