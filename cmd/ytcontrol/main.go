package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/bft-labs/ytcontrol/internal/adapters/log"
	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/pkg/ytcontrol"
	"github.com/bft-labs/ytcontrol/plugins/configwatcher"
)

const helpDescription = `
Drive YouTube Live broadcasts from a control surface.

Highlights:
  - Signs in with your Google OAuth client and remembers the token.
  - Polls broadcast status and stream health and exposes them as variables.
  - Serves feedbacks, presets and actions over a small HTTP API.
  - Reloads automatically when the config file changes.
`

var exampleUsage = strings.TrimSpace(`
  ytcontrol --client-id <id> --client-secret <secret>
  ytcontrol --config $HOME/.ytcontrol/config.toml --listen 127.0.0.1:8554
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := config.DefaultConfig()
	var cfgPath string

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:     "ytcontrol",
		Short:   "Drive YouTube Live broadcasts from a control surface",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.ytcontrol/config.toml), then apply overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = config.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && config.FileExists(cfgFile) {
				fc, err := config.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := config.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (YTCONTROL_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := config.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := logAdapter.NewZerologAdapterWithLogger(log.Level(parseLevel(cfg.LogLevel)))

			// Log configuration (masking secrets)
			logCfg := cfg
			if logCfg.Module.ClientSecret != "" {
				logCfg.Module.ClientSecret = "*****"
			}
			if logCfg.Module.AuthToken != "" {
				logCfg.Module.AuthToken = "*****"
			}
			zl := logger.Logger()
			zl.Info().Interface("config", logCfg).Str("path", cfgFile).Msg("configuration")

			opts := []ytcontrol.Option{
				ytcontrol.WithLogger(logger),
				ytcontrol.WithConsentURLHandler(func(url string) {
					fmt.Fprintf(os.Stderr, "\nOpen the following URL to grant access to your channel:\n\n  %s\n\n", url)
				}),
			}
			if cfgFile != "" {
				opts = append(opts,
					ytcontrol.WithConfigPath(cfgFile),
					configwatcher.WithDefaultConfigWatcher(),
				)
			}

			svc, err := ytcontrol.New(cfg, opts...)
			if err != nil {
				return fmt.Errorf("create ytcontrol: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.Run(ctx); err != nil {
				return fmt.Errorf("run ytcontrol: %w", err)
			}
			log.Info().Msg("stopped")
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.ytcontrol/config.toml)")
	root.Flags().StringVar(&cfg.Module.ClientID, "client-id", cfg.Module.ClientID, "Google OAuth2 client ID")
	root.Flags().StringVar(&cfg.Module.ClientSecret, "client-secret", cfg.Module.ClientSecret, "Google OAuth2 client secret")
	root.Flags().StringVar(&cfg.Module.RedirectURL, "redirect-url", cfg.Module.RedirectURL, "OAuth2 redirect URL served on loopback during consent")

	root.Flags().IntVar(&cfg.Module.MaxBroadcastCount, "max-broadcasts", cfg.Module.MaxBroadcastCount, "maximum number of broadcasts fetched")
	root.Flags().DurationVar(&cfg.Module.RefreshInterval, "refresh-interval", cfg.Module.RefreshInterval, "broadcast status and stream health polling interval")
	root.Flags().IntVar(&cfg.Module.MaxUnfinishedBroadcastCount, "max-unfinished", cfg.Module.MaxUnfinishedBroadcastCount, "number of positional unfinished broadcast slots")

	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "address of the surface HTTP API (empty disables it)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("ytcontrol")
		os.Exit(1)
	}
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
