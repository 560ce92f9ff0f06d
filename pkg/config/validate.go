package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a single config validation error.
type ValidationError struct {
	Path    string // Config path, e.g., "port"
	Message string
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationResult contains all validation errors for a Config.
type ValidationResult struct {
	Errors []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns a combined error message.
func (r *ValidationResult) Error() string {
	if r.IsValid() {
		return ""
	}
	var msgs []string
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "\n")
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(path, message string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message})
}

// Validate checks a Config and returns any errors found.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	if cfg.Port < 1 || cfg.Port > 65535 {
		result.AddError("port", fmt.Sprintf("must be between 1 and 65535, got %d", cfg.Port))
	}

	if cfg.RemoteOrigin == "" {
		result.AddError("remoteOrigin", "required")
	} else {
		u, err := url.Parse(cfg.RemoteOrigin)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			result.AddError("remoteOrigin", fmt.Sprintf("must be an absolute http(s) URL, got %q", cfg.RemoteOrigin))
		}
	}

	if cfg.ResourceDir == "" {
		result.AddError("resourceDir", "required")
	}

	switch cfg.Mode {
	case ModeDesktop, ModeDev:
	default:
		result.AddError("mode", fmt.Sprintf("unknown mode %q, expected %q or %q", cfg.Mode, ModeDesktop, ModeDev))
	}

	return result
}
