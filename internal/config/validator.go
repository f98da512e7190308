package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ademaro/fiphunt/internal/target"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "hunt.workers")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidInterfaces returns the list of valid endpoint interfaces
func ValidInterfaces() []string {
	return []string{"public", "internal", "admin"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAuth()...)
	errors = append(errors, c.validateHunt()...)
	errors = append(errors, c.validateTarget()...)
	errors = append(errors, c.validateSchedule()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateAuth validates the AuthConfig
func (c *Config) validateAuth() []ValidationError {
	var errors []ValidationError

	required := []struct {
		field string
		value string
	}{
		{"auth.auth_url", c.Auth.AuthURL},
		{"auth.username", c.Auth.Username},
		{"auth.password", c.Auth.Password},
		{"auth.project_id", c.Auth.ProjectID},
	}
	for _, r := range required {
		if r.value == "" {
			errors = append(errors, ValidationError{
				Field:   r.field,
				Value:   "",
				Message: "is required",
			})
		}
	}

	if !slices.Contains(ValidInterfaces(), c.Auth.Interface) {
		errors = append(errors, ValidationError{
			Field:   "auth.interface",
			Value:   c.Auth.Interface,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidInterfaces(), ", ")),
		})
	}

	return errors
}

// validateHunt validates the HuntConfig
func (c *Config) validateHunt() []ValidationError {
	var errors []ValidationError

	if c.Hunt.Workers < 1 {
		errors = append(errors, ValidationError{
			Field:   "hunt.workers",
			Value:   c.Hunt.Workers,
			Message: "must be at least 1",
		})
	}
	if c.Hunt.Workers > 128 {
		errors = append(errors, ValidationError{
			Field:   "hunt.workers",
			Value:   c.Hunt.Workers,
			Message: "must be at most 128",
		})
	}
	if c.Hunt.AttemptDelayMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "hunt.attempt_delay_ms",
			Value:   c.Hunt.AttemptDelayMs,
			Message: "must be positive",
		})
	}
	if c.Hunt.VerifyTimeoutMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "hunt.verify_timeout_ms",
			Value:   c.Hunt.VerifyTimeoutMs,
			Message: "must be positive",
		})
	}
	if c.Hunt.VerifyPollMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "hunt.verify_poll_ms",
			Value:   c.Hunt.VerifyPollMs,
			Message: "must be positive",
		})
	} else if c.Hunt.VerifyPollMs > c.Hunt.VerifyTimeoutMs {
		errors = append(errors, ValidationError{
			Field:   "hunt.verify_poll_ms",
			Value:   c.Hunt.VerifyPollMs,
			Message: "must not exceed hunt.verify_timeout_ms",
		})
	}
	if c.Hunt.SpawnStaggerMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "hunt.spawn_stagger_ms",
			Value:   c.Hunt.SpawnStaggerMs,
			Message: "must be non-negative",
		})
	}
	if c.Hunt.Server == "" {
		errors = append(errors, ValidationError{
			Field:   "hunt.server",
			Value:   "",
			Message: "is required",
		})
	}

	return errors
}

// validateTarget validates the TargetConfig
func (c *Config) validateTarget() []ValidationError {
	var errors []ValidationError

	if len(c.Target.Nets) == 0 {
		errors = append(errors, ValidationError{
			Field:   "target.nets",
			Value:   c.Target.Nets,
			Message: "must contain at least one CIDR range",
		})
		return errors
	}

	// Matches how the hunt parses them: comma-joined elements are split,
	// so one env value can carry several ranges.
	if _, err := target.ParseList(strings.Join(c.Target.Nets, ",")); err != nil {
		errors = append(errors, ValidationError{
			Field:   "target.nets",
			Value:   c.Target.Nets,
			Message: err.Error(),
		})
	}

	return errors
}

// validateSchedule validates the ScheduleConfig
func (c *Config) validateSchedule() []ValidationError {
	var errors []ValidationError

	if c.Schedule.WorkMinutes < 0 {
		errors = append(errors, ValidationError{
			Field:   "schedule.work_minutes",
			Value:   c.Schedule.WorkMinutes,
			Message: "must be non-negative",
		})
	}
	if c.Schedule.PauseMinutes < 0 {
		errors = append(errors, ValidationError{
			Field:   "schedule.pause_minutes",
			Value:   c.Schedule.PauseMinutes,
			Message: "must be non-negative",
		})
	}
	if c.Schedule.PauseMinutes > 0 && c.Schedule.WorkMinutes == 0 {
		errors = append(errors, ValidationError{
			Field:   "schedule.pause_minutes",
			Value:   c.Schedule.PauseMinutes,
			Message: "requires schedule.work_minutes to be set",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
