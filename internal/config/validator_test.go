package config

import (
	"strings"
	"testing"
)

// validConfig returns a config that passes validation, for tests to break
// one field at a time.
func validConfig() *Config {
	cfg := Default()
	cfg.Auth.AuthURL = "https://identity.example.com:5000/v3/"
	cfg.Auth.Username = "hunter"
	cfg.Auth.Password = "secret"
	cfg.Auth.ProjectID = "p-123"
	cfg.Hunt.Server = "my-server"
	return cfg
}

func findError(errs []ValidationError, field string) *ValidationError {
	for i := range errs {
		if errs[i].Field == field {
			return &errs[i]
		}
	}
	return nil
}

func TestValidate_ValidConfig(t *testing.T) {
	if errs := validConfig().Validate(); len(errs) != 0 {
		t.Errorf("Validate() on a valid config returned %d errors: %v", len(errs), errs)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"auth.auth_url", func(c *Config) { c.Auth.AuthURL = "" }},
		{"auth.username", func(c *Config) { c.Auth.Username = "" }},
		{"auth.password", func(c *Config) { c.Auth.Password = "" }},
		{"auth.project_id", func(c *Config) { c.Auth.ProjectID = "" }},
		{"hunt.server", func(c *Config) { c.Hunt.Server = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			errs := cfg.Validate()
			if findError(errs, tt.field) == nil {
				t.Errorf("Validate() did not flag missing %s: %v", tt.field, errs)
			}
		})
	}
}

func TestValidate_AuthInterface(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.Interface = "backdoor"

	errs := cfg.Validate()
	err := findError(errs, "auth.interface")
	if err == nil {
		t.Fatalf("Validate() did not flag invalid interface: %v", errs)
	}
	if !strings.Contains(err.Message, "public") {
		t.Errorf("error message %q does not list valid values", err.Message)
	}
}

func TestValidate_Hunt(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		mutate func(*Config)
	}{
		{"zero workers", "hunt.workers", func(c *Config) { c.Hunt.Workers = 0 }},
		{"negative workers", "hunt.workers", func(c *Config) { c.Hunt.Workers = -1 }},
		{"too many workers", "hunt.workers", func(c *Config) { c.Hunt.Workers = 129 }},
		{"zero attempt delay", "hunt.attempt_delay_ms", func(c *Config) { c.Hunt.AttemptDelayMs = 0 }},
		{"zero verify timeout", "hunt.verify_timeout_ms", func(c *Config) { c.Hunt.VerifyTimeoutMs = 0 }},
		{"zero verify poll", "hunt.verify_poll_ms", func(c *Config) { c.Hunt.VerifyPollMs = 0 }},
		{"poll exceeds timeout", "hunt.verify_poll_ms", func(c *Config) {
			c.Hunt.VerifyTimeoutMs = 100
			c.Hunt.VerifyPollMs = 200
		}},
		{"negative stagger", "hunt.spawn_stagger_ms", func(c *Config) { c.Hunt.SpawnStaggerMs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if findError(cfg.Validate(), tt.field) == nil {
				t.Errorf("Validate() did not flag %s", tt.name)
			}
		})
	}
}

func TestValidate_HuntBoundaries(t *testing.T) {
	cfg := validConfig()
	cfg.Hunt.Workers = 128
	cfg.Hunt.VerifyTimeoutMs = 500
	cfg.Hunt.VerifyPollMs = 500
	cfg.Hunt.SpawnStaggerMs = 0

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() flagged boundary values: %v", errs)
	}
}

func TestValidate_Target(t *testing.T) {
	t.Run("empty nets", func(t *testing.T) {
		cfg := validConfig()
		cfg.Target.Nets = nil

		if findError(cfg.Validate(), "target.nets") == nil {
			t.Error("Validate() did not flag empty target.nets")
		}
	})

	t.Run("malformed CIDR", func(t *testing.T) {
		cfg := validConfig()
		cfg.Target.Nets = []string{"95.163.248.0/22", "not-a-cidr"}

		if findError(cfg.Validate(), "target.nets") == nil {
			t.Error("Validate() did not flag a malformed CIDR")
		}
	})

	t.Run("multiple valid nets", func(t *testing.T) {
		cfg := validConfig()
		cfg.Target.Nets = []string{"95.163.248.0/22", "10.0.0.0/8"}

		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() flagged valid nets: %v", errs)
		}
	})

	t.Run("comma-joined nets in one element", func(t *testing.T) {
		// The form a single env value takes.
		cfg := validConfig()
		cfg.Target.Nets = []string{"95.163.248.0/22,10.0.0.0/8"}

		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() flagged comma-joined nets: %v", errs)
		}
	})
}

func TestValidate_Schedule(t *testing.T) {
	t.Run("negative work", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule.WorkMinutes = -1

		if findError(cfg.Validate(), "schedule.work_minutes") == nil {
			t.Error("Validate() did not flag negative work_minutes")
		}
	})

	t.Run("negative pause", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule.PauseMinutes = -1

		if findError(cfg.Validate(), "schedule.pause_minutes") == nil {
			t.Error("Validate() did not flag negative pause_minutes")
		}
	})

	t.Run("pause without work", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule.PauseMinutes = 5

		if findError(cfg.Validate(), "schedule.pause_minutes") == nil {
			t.Error("Validate() did not flag a pause with no work window")
		}
	})

	t.Run("work and pause together", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule.WorkMinutes = 30
		cfg.Schedule.PauseMinutes = 5

		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() flagged a valid schedule: %v", errs)
		}
	})

	t.Run("fractional minutes", func(t *testing.T) {
		cfg := validConfig()
		cfg.Schedule.WorkMinutes = 0.5
		cfg.Schedule.PauseMinutes = 0.25

		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() flagged fractional minutes: %v", errs)
		}
	})
}

func TestValidate_Logging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	if findError(cfg.Validate(), "logging.level") == nil {
		t.Error("Validate() did not flag an unknown log level")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "hunt.workers", Value: 0, Message: "must be at least 1"},
	}
	if !strings.Contains(errs.Error(), "hunt.workers") {
		t.Errorf("single error output %q missing field", errs.Error())
	}

	errs = append(errs, ValidationError{Field: "hunt.server", Value: "", Message: "is required"})
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("multi-error output %q missing count", msg)
	}
	if !strings.Contains(msg, "hunt.server") {
		t.Errorf("multi-error output %q missing second field", msg)
	}
}
