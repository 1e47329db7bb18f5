package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const (
	configFileBase    = "volunteer_hub_config"
	defaultListenAddr = ":8080"
	defaultTimezone   = "Europe/London"
	defaultSheetRange = "Volunteers!A:C"
)

// AutoAcceptConfig controls the auto-accept rule engine
type AutoAcceptConfig struct {
	Enabled bool `yaml:"enabled"`
	// HaltOnStopRuleMiss stops evaluation when a stopOnMatch rule does not match
	HaltOnStopRuleMiss bool `yaml:"haltOnStopRuleMiss"`
}

// EmailConfig controls confirmation e-mails sent through Gmail
type EmailConfig struct {
	Enabled     bool   `yaml:"enabled"`
	GmailUserID string `yaml:"gmailUserID" validate:"required_if=Enabled true"`
	GmailSender string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
	SiteURL     string `yaml:"siteURL,omitempty" validate:"omitempty,url"`
}

// VolunteerSheetConfig points at a Google Sheet listing volunteers to import.
// Range is in A1 notation and its first row must be a header.
type VolunteerSheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheetID"`
	Range         string `yaml:"range" validate:"required_with=SpreadsheetID"`
}

// RecurringShift describes shifts generated from a recurrence rule
type RecurringShift struct {
	ShiftTypeID     string `yaml:"shiftTypeID" validate:"required"`
	Location        string `yaml:"location" validate:"required"`
	RRule           string `yaml:"rrule" validate:"required"`
	DurationMinutes int    `yaml:"durationMinutes" validate:"required,min=1,max=1440"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL     string               `yaml:"databaseURL" validate:"required"`
	ListenAddr      string               `yaml:"listenAddr" validate:"required,hostname_port|startswith=:"`
	Timezone        string               `yaml:"timezone" validate:"required"`
	AutoAccept      AutoAcceptConfig     `yaml:"autoAccept"`
	Email           EmailConfig          `yaml:"email"`
	VolunteerSheet  VolunteerSheetConfig `yaml:"volunteerSheet,omitempty"`
	RecurringShifts []RecurringShift     `yaml:"recurringShifts,omitempty" validate:"dive"`
}

// Defaults returns a config populated with the values used when a key is absent
func Defaults() Config {
	return Config{
		ListenAddr: defaultListenAddr,
		Timezone:   defaultTimezone,
		VolunteerSheet: VolunteerSheetConfig{
			Range: defaultSheetRange,
		},
		AutoAccept: AutoAcceptConfig{
			Enabled:            true,
			HaltOnStopRuleMiss: true,
		},
	}
}

// UsesGoogle reports whether any configured feature calls Google APIs
func (c *Config) UsesGoogle() bool {
	return c.Email.Enabled || c.VolunteerSheet.SpreadsheetID != ""
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from volunteer_hub_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment.
// For example, env="test" will look for "volunteer_hub_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the timezone and rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	for i, rs := range cfg.RecurringShifts {
		if _, err := rrule.StrToRRule(rs.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringShifts[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for the config file in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "volunteer_hub_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := configFileBase + ".yaml"
	if env != "" {
		configFileName = configFileBase + "." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
