package configwatcher

import "github.com/bft-labs/ytcontrol/pkg/ytcontrol"

// WithConfigWatcher returns a ytcontrol Option that enables config file watching.
// When enabled, the plugin reloads the module whenever the module settings in
// the configuration file change.
//
// Usage:
//
//	svc, err := ytcontrol.New(cfg,
//	    ytcontrol.WithConfigPath(path),
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 200 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) ytcontrol.Option {
	plugin := New(cfg)
	return ytcontrol.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a ytcontrol Option that enables config
// watching with default settings (debounce 100ms).
func WithDefaultConfigWatcher() ytcontrol.Option {
	return WithConfigWatcher(DefaultConfig())
}
