package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
	"github.com/bft-labs/ytcontrol/internal/projection"
)

// Projection kinds reported to EventEmitter.OnProjection.
const (
	ProjectionAll       = "all"
	ProjectionStates    = "states"
	ProjectionBroadcast = "broadcast"
)

// Deps are the collaborators of a Module.
type Deps struct {
	Host         ports.Host
	Authorizer   ports.Authorizer
	APIFactory   ports.APIClientFactory
	CacheFactory ports.StateCacheFactory
	Logger       ports.Logger
	Emitter      EventEmitter

	// RGB resolves colours; defaults to domain.RGB.
	RGB domain.RGBFunc

	// Now is the clock sampled for feedback blinking; defaults to time.Now.
	Now func() time.Time
}

// Module drives authorization, cache construction and teardown, and
// projects the cache onto the host.
//
// Every initialization attempt captures the epoch; Destroy increments it
// before tearing anything down, so continuations of an older attempt find a
// different epoch and do nothing.
type Module struct {
	mu     sync.Mutex
	cfg    config.ModuleConfig
	state  moduleState
	epoch  uint64
	cancel context.CancelFunc
	closed bool

	host      ports.Host
	auth      ports.Authorizer
	newAPI    ports.APIClientFactory
	newCache  ports.StateCacheFactory
	engine    *projection.Engine
	logger    ports.Logger
	emitter   EventEmitter
	lifecycle *Lifecycle
	now       func() time.Time
}

// NewModule creates a Module in the Uninitialized phase.
func NewModule(cfg config.ModuleConfig, deps Deps) *Module {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Module{
		cfg:       cfg,
		state:     uninitialized{},
		host:      deps.Host,
		auth:      deps.Authorizer,
		newAPI:    deps.APIFactory,
		newCache:  deps.CacheFactory,
		engine:    projection.NewEngine(deps.Host, deps.RGB),
		logger:    deps.Logger,
		emitter:   deps.Emitter,
		lifecycle: NewLifecycle(deps.Logger, deps.Emitter),
		now:       now,
	}
}

// Phase returns the current lifecycle phase.
func (m *Module) Phase() Phase {
	return m.lifecycle.Phase()
}

// Config returns a copy of the current module configuration.
func (m *Module) Config() config.ModuleConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Memory returns a snapshot of the live cache, if any.
func (m *Module) Memory() (domain.StateMemory, bool) {
	m.mu.Lock()
	r, ok := m.state.(ready)
	m.mu.Unlock()
	if !ok {
		return domain.StateMemory{}, false
	}
	return r.cache.Memory(), true
}

// transition moves to next; callers hold m.mu.
func (m *Module) transition(next moduleState, reason string) error {
	if err := m.lifecycle.TransitionTo(next.phase(), reason); err != nil {
		return err
	}
	m.state = next
	return nil
}

// Init starts an initialization attempt in the background.
// isReconfig is passed to the authorizer.
func (m *Module) Init(isReconfig bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug("Initializing module", ports.Bool("reconfig", isReconfig))
	if m.closed {
		m.logger.Warn("init ignored: module shut down")
		return
	}
	if err := m.transition(authorizing{}, "init"); err != nil {
		m.logger.Warn("init ignored", ports.Err(err))
		return
	}

	m.epoch++
	epoch := m.epoch
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.host.SetStatus(domain.StatusWarning, "Initializing")

	m.lifecycle.AddWorker()
	go m.run(ctx, epoch, isReconfig)
}

// run is the body of one initialization attempt.
func (m *Module) run(ctx context.Context, epoch uint64, isReconfig bool) {
	defer m.lifecycle.WorkerDone()

	cred, err := m.auth.Authorize(ctx, isReconfig)
	if err != nil {
		m.authorizationFailed(epoch, err)
		return
	}

	p, ok := m.authorized(ctx, epoch, cred)
	if !ok {
		return
	}

	err = p.cache.Init(ctx)
	m.cacheInitialized(ctx, epoch, p, err)
}

// stale reports whether epoch belongs to a superseded attempt.
// Callers hold m.mu.
func (m *Module) stale(epoch uint64) bool {
	if epoch != m.epoch {
		return true
	}
	_, ok := m.state.(authorizing)
	return !ok
}

func (m *Module) authorizationFailed(epoch uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stale(epoch) {
		m.logger.Debug("discarding authorization result of a superseded attempt", ports.Err(err))
		return
	}

	m.saveTokenLocked("")
	reason := fmt.Sprintf("Authorization failed: %v", err)
	m.logger.Warn(reason)
	m.fail(reason)
}

// pendingCache pairs a freshly built API client and cache.
type pendingCache struct {
	api   ports.APIClient
	cache ports.StateCache
}

// authorized persists the credential and builds the API client and cache.
// The API factory runs unlocked since it may read the module configuration.
func (m *Module) authorized(ctx context.Context, epoch uint64, cred domain.Credential) (pendingCache, bool) {
	m.mu.Lock()
	if m.stale(epoch) {
		m.mu.Unlock()
		m.logger.Debug("discarding credential of a superseded attempt")
		return pendingCache{}, false
	}

	raw, err := cred.Serialize()
	if err != nil {
		m.saveTokenLocked("")
		reason := fmt.Sprintf("Authorization failed: %v", err)
		m.logger.Warn(reason)
		m.fail(reason)
		m.mu.Unlock()
		return pendingCache{}, false
	}
	m.saveTokenLocked(raw)
	cfg := m.cfg
	m.mu.Unlock()

	api, err := m.newAPI(ctx, cred, config.MaxBroadcastCount(cfg))

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale(epoch) {
		m.logger.Debug("discarding API client of a superseded attempt")
		return pendingCache{}, false
	}
	if err != nil {
		reason := fmt.Sprintf("YT Broadcast query failed: %v", err)
		m.logger.Warn(reason)
		m.fail(reason)
		return pendingCache{}, false
	}

	cache := m.newCache(api, config.RefreshInterval(cfg), &epochListener{m: m, epoch: epoch})
	return pendingCache{api: api, cache: cache}, true
}

// cacheInitialized completes the attempt; ctx stays alive until Destroy.
func (m *Module) cacheInitialized(ctx context.Context, epoch uint64, p pendingCache, initErr error) {
	m.mu.Lock()

	if m.stale(epoch) {
		m.mu.Unlock()
		m.logger.Debug("discarding cache of a superseded attempt")
		p.cache.Destroy()
		return
	}

	if initErr != nil {
		reason := fmt.Sprintf("YT Broadcast query failed: %v", initErr)
		m.logger.Warn(reason)
		m.fail(reason)
		m.mu.Unlock()
		p.cache.Destroy()
		return
	}

	if err := m.transition(ready{api: p.api, cache: p.cache, ctx: ctx}, "cache initialized"); err != nil {
		m.mu.Unlock()
		m.logger.Error("failed to enter ready state", ports.Err(err))
		p.cache.Destroy()
		return
	}

	m.engine.ReloadAll(p.cache.Memory(), config.MaxUnfinishedBroadcastCount(m.cfg))
	m.projected(ProjectionAll)
	m.host.SetStatus(domain.StatusOK, "")
	m.logger.Info("Module initialized successfully")
	m.mu.Unlock()
}

// fail enters the Error phase and reports reason; callers hold m.mu.
func (m *Module) fail(reason string) {
	if err := m.transition(failed{reason: reason}, reason); err != nil {
		m.logger.Error("failed to enter error state", ports.Err(err))
	}
	m.host.SetStatus(domain.StatusError, reason)
}

// Destroy cancels the pending attempt and tears down the live cache.
// Calling it on a destroyed module does nothing.
func (m *Module) Destroy() {
	m.mu.Lock()
	if _, ok := m.state.(destroyed); ok {
		m.mu.Unlock()
		return
	}

	m.epoch++
	cancel := m.cancel
	m.cancel = nil
	var cache ports.StateCache
	if r, ok := m.state.(ready); ok {
		cache = r.cache
	}
	if err := m.transition(destroyed{}, "destroy"); err != nil {
		m.logger.Error("failed to enter destroyed state", ports.Err(err))
	}
	m.mu.Unlock()

	// Teardown runs unlocked: the poller may be waiting on m.mu.
	if cancel != nil {
		cancel()
	}
	m.auth.Cancel()
	if cache != nil {
		cache.Destroy()
	}
}

// UpdateConfig replaces the configuration and restarts the module.
func (m *Module) UpdateConfig(cfg config.ModuleConfig) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	m.logger.Debug("Restarting module after reconfiguration")
	m.Destroy()
	m.Init(true)
}

// SaveToken stores raw as the credential and persists the configuration.
// The empty string signs out.
func (m *Module) SaveToken(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveTokenLocked(raw)
}

func (m *Module) saveTokenLocked(raw string) {
	m.cfg.AuthToken = raw
	if err := m.host.SaveConfig(m.cfg); err != nil {
		m.logger.Warn("failed to save config", ports.Err(err))
	}
}

// TokenRefreshed persists a credential refreshed by the live API client.
// It is ignored unless the module is ready or when the token did not change.
func (m *Module) TokenRefreshed(cred domain.Credential) {
	raw, err := cred.Serialize()
	if err != nil || raw == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.state.(ready); !ok || raw == m.cfg.AuthToken {
		return
	}
	m.logger.Debug("persisting refreshed token")
	m.saveTokenLocked(raw)
}

// Action runs a host action in the background.
// It does nothing unless the module is ready; failures are only logged.
func (m *Module) Action(event domain.ActionEvent) {
	m.mu.Lock()
	r, ok := m.state.(ready)
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("action ignored, module not ready", ports.String("action", event.Action))
		return
	}
	m.lifecycle.AddWorker()
	m.mu.Unlock()

	go func() {
		defer m.lifecycle.WorkerDone()

		err := projection.HandleAction(r.ctx, event, r.cache.Memory(), r.cache)
		if err != nil {
			m.logger.Warn("Action failed",
				ports.String("action", event.Action),
				ports.Err(err),
			)
		}
		if m.emitter != nil {
			m.emitter.OnAction(event.Action, err)
		}
	}()
}

// Feedback renders a host feedback.
// It returns the empty style unless the module is ready.
func (m *Module) Feedback(event domain.FeedbackEvent) domain.Style {
	m.mu.Lock()
	r, ok := m.state.(ready)
	m.mu.Unlock()
	if !ok {
		return domain.Style{}
	}
	return projection.HandleFeedback(event, r.cache.Memory(), m.engine.RGB(), projection.BlinkPhase(m.now()))
}

// Shutdown destroys the module and waits for background work. Later Init
// calls, including those from UpdateConfig, are ignored.
// Returns ErrShutdownTimeout if the timeout expires.
func (m *Module) Shutdown(timeout time.Duration) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.Destroy()
	return m.lifecycle.WaitWithTimeout(timeout)
}

func (m *Module) projected(kind string) {
	if m.emitter != nil {
		m.emitter.OnProjection(kind)
	}
}

// epochListener forwards cache notifications of one initialization epoch.
// Notifications from a superseded epoch, or before the module is ready,
// are dropped.
type epochListener struct {
	m     *Module
	epoch uint64
}

// live reports whether the listener's epoch is current and ready.
// Callers hold m.mu.
func (l *epochListener) live() bool {
	if l.epoch != l.m.epoch {
		return false
	}
	_, ok := l.m.state.(ready)
	return ok
}

func (l *epochListener) ReloadAll(mem domain.StateMemory) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if !l.live() {
		return
	}
	l.m.engine.ReloadAll(mem, config.MaxUnfinishedBroadcastCount(l.m.cfg))
	l.m.projected(ProjectionAll)
}

func (l *epochListener) ReloadStates(mem domain.StateMemory) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if !l.live() {
		return
	}
	l.m.engine.ReloadStates(mem, config.MaxUnfinishedBroadcastCount(l.m.cfg))
	l.m.projected(ProjectionStates)
}

func (l *epochListener) ReloadBroadcast(b domain.Broadcast, mem domain.StateMemory) {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	if !l.live() {
		return
	}
	l.m.engine.ReloadBroadcast(b, mem, config.MaxUnfinishedBroadcastCount(l.m.cfg))
	l.m.projected(ProjectionBroadcast)
}
