package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	AuthToken                   string `toml:"auth_token"`
	ClientID                    string `toml:"client_id"`
	ClientSecret                string `toml:"client_secret"`
	RedirectURL                 string `toml:"redirect_url"`
	MaxBroadcastCount           int    `toml:"max_broadcast_count"`
	RefreshInterval             string `toml:"refresh_interval"`
	MaxUnfinishedBroadcastCount int    `toml:"max_unfinished_broadcast_count"`
	ListenAddr                  string `toml:"listen_addr,omitempty"`
	LogLevel                    string `toml:"log_level,omitempty"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.ytcontrol/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".ytcontrol", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	// The stored token is owned by the module, never by a flag.
	cfg.Module.AuthToken = fc.AuthToken

	s.setString("client-id", fc.ClientID, &cfg.Module.ClientID)
	s.setString("client-secret", fc.ClientSecret, &cfg.Module.ClientSecret)
	s.setString("redirect-url", fc.RedirectURL, &cfg.Module.RedirectURL)
	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("refresh-interval", fc.RefreshInterval, &cfg.Module.RefreshInterval); err != nil {
		return err
	}

	s.setInt("max-broadcasts", fc.MaxBroadcastCount, &cfg.Module.MaxBroadcastCount)
	s.setInt("max-unfinished", fc.MaxUnfinishedBroadcastCount, &cfg.Module.MaxUnfinishedBroadcastCount)

	return nil
}

// ModuleFromFile converts the module part of a FileConfig, starting from base
// for any field the file leaves empty.
func ModuleFromFile(base ModuleConfig, fc FileConfig) (ModuleConfig, error) {
	cfg := Config{Module: base}
	if err := ApplyFileConfig(&cfg, fc, nil); err != nil {
		return ModuleConfig{}, err
	}
	return cfg.Module, nil
}

// MergeModule writes the module settings into fc, keeping process-level keys.
func MergeModule(fc FileConfig, m ModuleConfig) FileConfig {
	fc.AuthToken = m.AuthToken
	fc.ClientID = m.ClientID
	fc.ClientSecret = m.ClientSecret
	fc.RedirectURL = m.RedirectURL
	fc.MaxBroadcastCount = m.MaxBroadcastCount
	fc.MaxUnfinishedBroadcastCount = m.MaxUnfinishedBroadcastCount
	fc.RefreshInterval = ""
	if m.RefreshInterval > 0 {
		fc.RefreshInterval = m.RefreshInterval.String()
	}
	return fc
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
