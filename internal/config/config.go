package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

// Defaults for module settings.
const (
	DefaultRedirectURL                 = "http://127.0.0.1:8555/oauth/callback"
	DefaultMaxBroadcastCount           = 10
	DefaultRefreshInterval             = 60 * time.Second
	MinRefreshInterval                 = time.Second
	DefaultMaxUnfinishedBroadcastCount = 3
	DefaultListenAddr                  = "127.0.0.1:8554"
	DefaultLogLevel                    = "info"
)

// ModuleConfig holds the persisted module settings.
// It is mutated only by the module lifecycle (reconfiguration, token save).
type ModuleConfig struct {
	// AuthToken is the serialized credential; empty means signed out
	AuthToken string

	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	RedirectURL  string `validate:"required,url"`

	// MaxBroadcastCount limits how many broadcasts are fetched from the API
	MaxBroadcastCount int `validate:"gte=0,lte=50"`

	// RefreshInterval is the polling period for broadcast and stream states
	RefreshInterval time.Duration `validate:"gte=0"`

	// MaxUnfinishedBroadcastCount is the number of positional "unfinished" slots
	MaxUnfinishedBroadcastCount int `validate:"gte=0,lte=50"`
}

// MaxBroadcastCount returns the configured broadcast limit or its default.
func MaxBroadcastCount(c ModuleConfig) int {
	if c.MaxBroadcastCount <= 0 {
		return DefaultMaxBroadcastCount
	}
	return c.MaxBroadcastCount
}

// RefreshInterval returns the configured polling period, never below MinRefreshInterval.
func RefreshInterval(c ModuleConfig) time.Duration {
	if c.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	if c.RefreshInterval < MinRefreshInterval {
		return MinRefreshInterval
	}
	return c.RefreshInterval
}

// MaxUnfinishedBroadcastCount returns the configured slot count or its default.
func MaxUnfinishedBroadcastCount(c ModuleConfig) int {
	if c.MaxUnfinishedBroadcastCount <= 0 {
		return DefaultMaxUnfinishedBroadcastCount
	}
	return c.MaxUnfinishedBroadcastCount
}

// Config holds CLI configuration for ytcontrol.
type Config struct {
	Module ModuleConfig

	// ListenAddr is the address of the host surface HTTP API
	ListenAddr string `validate:"omitempty,hostname_port"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Module: ModuleConfig{
			ClientID:                    os.Getenv("YTCONTROL_CLIENT_ID"),
			ClientSecret:                os.Getenv("YTCONTROL_CLIENT_SECRET"),
			RedirectURL:                 DefaultRedirectURL,
			MaxBroadcastCount:           DefaultMaxBroadcastCount,
			RefreshInterval:             DefaultRefreshInterval,
			MaxUnfinishedBroadcastCount: DefaultMaxUnfinishedBroadcastCount,
		},
		ListenAddr: DefaultListenAddr,
		LogLevel:   DefaultLogLevel,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	c.Module.ClientID = strings.TrimSpace(c.Module.ClientID)
	c.Module.ClientSecret = strings.TrimSpace(c.Module.ClientSecret)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.Module.RedirectURL == "" {
		c.Module.RedirectURL = DefaultRedirectURL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
