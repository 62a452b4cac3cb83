// Package configwatcher reloads the ytcontrol module when its configuration
// file changes on disk.
package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/ports"
	"github.com/bft-labs/ytcontrol/pkg/ytcontrol"
)

// Plugin implements config watching functionality.
// It watches the directory of the configuration file so that editors which
// replace the file by renaming are noticed as well.
type Plugin struct {
	mu sync.RWMutex

	debounceDelay time.Duration

	path        string
	logger      ytcontrol.Logger
	current     func() ytcontrol.ModuleConfig
	reconfigure func(ytcontrol.ModuleConfig)
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{debounceDelay: cfg.DebounceDelay}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the configuration file.
func (p *Plugin) Initialize(ctx context.Context, cfg ytcontrol.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = cfg.Logger
	p.current = cfg.Current
	p.reconfigure = cfg.Reconfigure
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("Config watcher disabled: no config file")
		return nil
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("Config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop reloads the configuration once events settle for the debounce delay.
func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	debounce := time.NewTimer(p.debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(p.debounceDelay)

		case <-debounce.C:
			p.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Config watcher: watcher error", ports.Err(err))
		}
	}
}

// reload applies the module settings of the file when they differ from the
// active ones. Invalid files are ignored.
func (p *Plugin) reload() {
	if !config.FileExists(p.path) {
		return
	}
	fc, err := config.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("Config watcher: failed to load config", ports.Err(err))
		return
	}

	current := p.current()
	next, err := config.ModuleFromFile(current, fc)
	if err != nil {
		p.logger.Warn("Config watcher: invalid config", ports.Err(err))
		return
	}

	candidate := config.Config{Module: next, LogLevel: config.DefaultLogLevel}
	if err := candidate.Validate(); err != nil {
		p.logger.Warn("Config watcher: invalid config", ports.Err(err))
		return
	}
	next = candidate.Module

	if next == current {
		p.logger.Debug("Config watcher: module settings unchanged")
		return
	}

	p.logger.Info("Config watcher: module settings changed, reconfiguring")
	p.reconfigure(next)
}

// Ensure Plugin implements ytcontrol.Plugin.
var _ ytcontrol.Plugin = (*Plugin)(nil)
