package config

import "os"

// ApplyEnvConfig applies configuration from environment variables (YTCONTROL_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("client-id", os.Getenv("YTCONTROL_CLIENT_ID"), &cfg.Module.ClientID)
	s.setString("client-secret", os.Getenv("YTCONTROL_CLIENT_SECRET"), &cfg.Module.ClientSecret)
	s.setString("redirect-url", os.Getenv("YTCONTROL_REDIRECT_URL"), &cfg.Module.RedirectURL)
	s.setString("listen", os.Getenv("YTCONTROL_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("log-level", os.Getenv("YTCONTROL_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("refresh-interval", os.Getenv("YTCONTROL_REFRESH_INTERVAL"), &cfg.Module.RefreshInterval); err != nil {
		return err
	}
	if err := s.setIntFromString("max-broadcasts", os.Getenv("YTCONTROL_MAX_BROADCASTS"), &cfg.Module.MaxBroadcastCount); err != nil {
		return err
	}
	if err := s.setIntFromString("max-unfinished", os.Getenv("YTCONTROL_MAX_UNFINISHED"), &cfg.Module.MaxUnfinishedBroadcastCount); err != nil {
		return err
	}

	return nil
}
