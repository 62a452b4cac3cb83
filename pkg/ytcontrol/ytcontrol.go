package ytcontrol

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/ytcontrol/internal/adapters/fs"
	"github.com/bft-labs/ytcontrol/internal/adapters/httpapi"
	logAdapter "github.com/bft-labs/ytcontrol/internal/adapters/log"
	"github.com/bft-labs/ytcontrol/internal/adapters/metrics"
	"github.com/bft-labs/ytcontrol/internal/adapters/surface"
	"github.com/bft-labs/ytcontrol/internal/adapters/youtube"
	"github.com/bft-labs/ytcontrol/internal/app"
	"github.com/bft-labs/ytcontrol/internal/auth"
	"github.com/bft-labs/ytcontrol/internal/cache"
	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

const serverShutdownTimeout = 5 * time.Second

// Service runs the module and serves its surface.
// Use New() to create an instance, then Run() until the context is cancelled.
type Service struct {
	config  Config
	opts    options
	module  *app.Module
	store   *surface.Store
	handler http.Handler
	logger  ports.Logger
	plugins []Plugin
	running atomic.Bool
}

// New creates a Service with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = logAdapter.NewNoopLogger()
	}

	var repo ports.ConfigRepository
	if o.configPath != "" {
		repo = fs.NewConfigFileRepository(o.configPath)
	}
	store := surface.NewStore(repo, logger)

	var m *metrics.Metrics
	if !o.disableMetrics {
		m = metrics.New()
	}
	emitter := &eventEmitterWrapper{handler: o.eventHandler, metrics: m}

	// module is bound below; the closures only run once it is initialized.
	var module *app.Module
	current := func() config.ModuleConfig { return module.Config() }

	var authOpts []auth.Option
	if o.oauthEndpoint != nil {
		authOpts = append(authOpts, auth.WithEndpoint(*o.oauthEndpoint))
	}
	if o.onConsentURL != nil {
		authOpts = append(authOpts, auth.WithConsentURLHandler(o.onConsentURL))
	}
	flow := auth.NewFlow(current, logger, authOpts...)

	authorizer := o.authorizer
	if authorizer == nil {
		authorizer = flow
	}
	apiFactory := o.apiFactory
	if apiFactory == nil {
		apiFactory = youtube.NewFactory(flow.OAuthConfig, func(c domain.Credential) {
			module.TokenRefreshed(c)
		}, o.apiOptions...)
	}

	module = app.NewModule(cfg.Module, app.Deps{
		Host:         store,
		Authorizer:   authorizer,
		APIFactory:   apiFactory,
		CacheFactory: cache.Factory(logger),
		Logger:       logger,
		Emitter:      emitter,
	})

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	router := httpapi.NewRouter(httpapi.NewHandler(module, store, metricsHandler, logger))

	return &Service{
		config:  cfg,
		opts:    o,
		module:  module,
		store:   store,
		handler: router,
		logger:  logger,
		plugins: o.plugins,
	}, nil
}

// Run initializes plugins and the module, serves the surface on the
// configured listen address, and blocks until ctx is cancelled or the
// server fails. The module and plugins are shut down before it returns.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrAlreadyRunning
	}
	defer s.running.Store(false)

	pluginCfg := PluginConfig{
		ConfigPath:  s.opts.configPath,
		Logger:      s.logger,
		Current:     s.module.Config,
		Reconfigure: s.module.UpdateConfig,
	}
	var initialized []Plugin
	for _, p := range s.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.shutdownPlugins(initialized)
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		initialized = append(initialized, p)
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	s.module.Init(false)

	g, gctx := errgroup.WithContext(ctx)
	if s.config.ListenAddr != "" {
		srv := &http.Server{
			Addr:              s.config.ListenAddr,
			Handler:           s.handler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			s.logger.Info("serving surface", ports.String("addr", s.config.ListenAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve surface: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	} else {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	err := g.Wait()

	// Plugins can reconfigure the module, so they stop first.
	s.shutdownPlugins(initialized)
	if shutdownErr := s.module.Shutdown(app.ShutdownTimeout); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	return err
}

// shutdownPlugins shuts plugins down in reverse order.
func (s *Service) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

// Phase returns the current module phase.
func (s *Service) Phase() Phase {
	return convertPhase(s.module.Phase())
}

// ModuleConfig returns the active module settings.
func (s *Service) ModuleConfig() ModuleConfig {
	return s.module.Config()
}

// Reconfigure restarts the module with new settings.
func (s *Service) Reconfigure(cfg ModuleConfig) {
	s.module.UpdateConfig(cfg)
}

// Handler returns the HTTP handler serving the surface.
func (s *Service) Handler() http.Handler {
	return s.handler
}

// eventEmitterWrapper adapts EventHandler and metrics to the module emitter.
type eventEmitterWrapper struct {
	handler EventHandler
	metrics *metrics.Metrics
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.Phase, reason string) {
	if e.metrics != nil {
		e.metrics.StateChanged(previous.String(), current.String())
	}
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertPhase(previous),
		Current:  convertPhase(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnProjection(kind string) {
	if e.metrics != nil {
		e.metrics.Projected(kind)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnProjection(ProjectionEvent{Kind: kind})
}

func (e *eventEmitterWrapper) OnAction(action string, err error) {
	if e.metrics != nil {
		e.metrics.ActionCompleted(action, err)
	}
	if e.handler == nil {
		return
	}
	e.handler.OnAction(ActionEvent{Action: action, Error: err})
}
