package config

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"YTCONTROL_CLIENT_ID":        "env-client",
				"YTCONTROL_CLIENT_SECRET":    "env-secret",
				"YTCONTROL_REDIRECT_URL":     "http://localhost:9000/cb",
				"YTCONTROL_REFRESH_INTERVAL": "30s",
				"YTCONTROL_MAX_BROADCASTS":   "20",
				"YTCONTROL_MAX_UNFINISHED":   "5",
				"YTCONTROL_LISTEN_ADDR":      ":9001",
				"YTCONTROL_LOG_LEVEL":        "debug",
			},
			changed: map[string]bool{},
			expected: Config{
				Module: ModuleConfig{
					ClientID:                    "env-client",
					ClientSecret:                "env-secret",
					RedirectURL:                 "http://localhost:9000/cb",
					RefreshInterval:             30 * time.Second,
					MaxBroadcastCount:           20,
					MaxUnfinishedBroadcastCount: 5,
				},
				ListenAddr: ":9001",
				LogLevel:   "debug",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"YTCONTROL_CLIENT_ID":      "env-client",
				"YTCONTROL_MAX_BROADCASTS": "20",
			},
			changed: map[string]bool{"client-id": true},
			initial: Config{Module: ModuleConfig{ClientID: "flag-client"}},
			expected: Config{Module: ModuleConfig{
				ClientID:          "flag-client",
				MaxBroadcastCount: 20,
			}},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"YTCONTROL_REFRESH_INTERVAL": "not-a-duration"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"YTCONTROL_MAX_UNFINISHED": "not-a-number"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:     "ignores non-positive int",
			envVars:  map[string]string{"YTCONTROL_MAX_BROADCASTS": "0"},
			changed:  map[string]bool{},
			initial:  Config{Module: ModuleConfig{MaxBroadcastCount: 7}},
			expected: Config{Module: ModuleConfig{MaxBroadcastCount: 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyEnvConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnvConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyEnvConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
