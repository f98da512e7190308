package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete fiphunt configuration
type Config struct {
	Auth     AuthConfig     `mapstructure:"auth"`
	Hunt     HuntConfig     `mapstructure:"hunt"`
	Target   TargetConfig   `mapstructure:"target"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AuthConfig holds the OpenStack identity credentials and endpoint selection
type AuthConfig struct {
	// AuthURL is the Keystone v3 endpoint (e.g. https://infra.mail.ru:35357/v3/)
	AuthURL string `mapstructure:"auth_url"`
	// Username is the identity user name
	Username string `mapstructure:"username"`
	// Password is the identity user password
	Password string `mapstructure:"password"`
	// ProjectID is the project the floating IPs are allocated in
	ProjectID string `mapstructure:"project_id"`
	// UserDomainName is the domain the user belongs to (default: "users")
	UserDomainName string `mapstructure:"user_domain_name"`
	// Region selects the regional service catalog (default: "RegionOne")
	Region string `mapstructure:"region"`
	// Interface is the endpoint visibility: "public", "internal" or "admin"
	Interface string `mapstructure:"interface"`
	// Insecure skips TLS certificate verification (default: false)
	Insecure bool `mapstructure:"insecure"`
}

// HuntConfig controls the acquisition race itself
type HuntConfig struct {
	// Workers is the number of concurrent hunters racing the allocator (default: 1)
	Workers int `mapstructure:"workers"`
	// AttemptDelayMs is the sleep between allocation attempts per worker (default: 600)
	AttemptDelayMs int `mapstructure:"attempt_delay_ms"`
	// VerifyTimeoutMs bounds how long a claim may take to become visible (default: 8000)
	VerifyTimeoutMs int `mapstructure:"verify_timeout_ms"`
	// VerifyPollMs is the interval between claim-status polls (default: 500)
	VerifyPollMs int `mapstructure:"verify_poll_ms"`
	// SpawnStaggerMs is the delay between spawning successive workers (default: 100)
	SpawnStaggerMs int `mapstructure:"spawn_stagger_ms"`
	// Server is the instance the won address is bound to, by ID or name
	Server string `mapstructure:"server"`
	// PortID pins the exact port to bind; empty selects one of the server's
	// ports automatically, preferring an active one
	PortID string `mapstructure:"port_id"`
	// ExternalNetwork is the network floating IPs are allocated from, by ID
	// or name; empty auto-discovers the first router:external network
	ExternalNetwork string `mapstructure:"external_network"`
}

// TargetConfig defines which addresses count as a win
type TargetConfig struct {
	// Nets are the CIDR ranges a candidate address must fall into.
	// Membership in any range qualifies.
	Nets []string `mapstructure:"nets"`
}

// ScheduleConfig controls duty-cycling: hunt for a window, pause, repeat
type ScheduleConfig struct {
	// WorkMinutes bounds each hunting window; 0 disables duty-cycling and
	// the single cycle races until success or interrupt
	WorkMinutes float64 `mapstructure:"work_minutes"`
	// PauseMinutes is the sleep between windows; 0 with a bounded window
	// means the hunt ends after one cycle
	PauseMinutes float64 `mapstructure:"pause_minutes"`
}

// NotifyConfig controls milestone notifications
type NotifyConfig struct {
	// URLs are shoutrrr service URLs (e.g. telegram://token@telegram?chats=...)
	URLs []string `mapstructure:"urls"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File appends JSON log lines to the given path; empty logs to stderr
	File string `mapstructure:"file"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			UserDomainName: "users",
			Region:         "RegionOne",
			Interface:      "public",
			Insecure:       false,
		},
		Hunt: HuntConfig{
			Workers:         1,
			AttemptDelayMs:  600,
			VerifyTimeoutMs: 8000,
			VerifyPollMs:    500,
			SpawnStaggerMs:  100,
		},
		Target: TargetConfig{
			Nets: []string{"95.163.248.0/22"},
		},
		Schedule: ScheduleConfig{
			WorkMinutes:  0, // Single unbounded cycle by default
			PauseMinutes: 0,
		},
		Notify: NotifyConfig{
			URLs: []string{},
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// AttemptDelay returns the inter-attempt delay as a time.Duration
func (h *HuntConfig) AttemptDelay() time.Duration {
	return time.Duration(h.AttemptDelayMs) * time.Millisecond
}

// VerifyTimeout returns the claim verification timeout as a time.Duration
func (h *HuntConfig) VerifyTimeout() time.Duration {
	return time.Duration(h.VerifyTimeoutMs) * time.Millisecond
}

// VerifyPoll returns the claim-status poll interval as a time.Duration
func (h *HuntConfig) VerifyPoll() time.Duration {
	return time.Duration(h.VerifyPollMs) * time.Millisecond
}

// SpawnStagger returns the worker spawn stagger as a time.Duration
func (h *HuntConfig) SpawnStagger() time.Duration {
	return time.Duration(h.SpawnStaggerMs) * time.Millisecond
}

// Work returns the hunting window as a time.Duration (0 means unbounded)
func (s *ScheduleConfig) Work() time.Duration {
	return time.Duration(s.WorkMinutes * float64(time.Minute))
}

// Pause returns the inter-cycle pause as a time.Duration (0 means none)
func (s *ScheduleConfig) Pause() time.Duration {
	return time.Duration(s.PauseMinutes * float64(time.Minute))
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Auth defaults
	viper.SetDefault("auth.auth_url", defaults.Auth.AuthURL)
	viper.SetDefault("auth.username", defaults.Auth.Username)
	viper.SetDefault("auth.password", defaults.Auth.Password)
	viper.SetDefault("auth.project_id", defaults.Auth.ProjectID)
	viper.SetDefault("auth.user_domain_name", defaults.Auth.UserDomainName)
	viper.SetDefault("auth.region", defaults.Auth.Region)
	viper.SetDefault("auth.interface", defaults.Auth.Interface)
	viper.SetDefault("auth.insecure", defaults.Auth.Insecure)

	// Hunt defaults
	viper.SetDefault("hunt.workers", defaults.Hunt.Workers)
	viper.SetDefault("hunt.attempt_delay_ms", defaults.Hunt.AttemptDelayMs)
	viper.SetDefault("hunt.verify_timeout_ms", defaults.Hunt.VerifyTimeoutMs)
	viper.SetDefault("hunt.verify_poll_ms", defaults.Hunt.VerifyPollMs)
	viper.SetDefault("hunt.spawn_stagger_ms", defaults.Hunt.SpawnStaggerMs)
	viper.SetDefault("hunt.server", defaults.Hunt.Server)
	viper.SetDefault("hunt.port_id", defaults.Hunt.PortID)
	viper.SetDefault("hunt.external_network", defaults.Hunt.ExternalNetwork)

	// Target defaults
	viper.SetDefault("target.nets", defaults.Target.Nets)

	// Schedule defaults
	viper.SetDefault("schedule.work_minutes", defaults.Schedule.WorkMinutes)
	viper.SetDefault("schedule.pause_minutes", defaults.Schedule.PauseMinutes)

	// Notify defaults
	viper.SetDefault("notify.urls", defaults.Notify.URLs)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fiphunt")
	}
	// Fall back to ~/.config/fiphunt
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fiphunt"
	}
	return filepath.Join(home, ".config", "fiphunt")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
