package ytcontrol_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
	"github.com/bft-labs/ytcontrol/pkg/ytcontrol"
)

type fakeAuthorizer struct {
	err error
}

func (a *fakeAuthorizer) Authorize(context.Context, bool) (domain.Credential, error) {
	if a.err != nil {
		return domain.Credential{}, a.err
	}
	return domain.Credential{Token: &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}}, nil
}

func (a *fakeAuthorizer) Cancel() {}

type fakeAPI struct {
	mu          sync.Mutex
	transitions []domain.BroadcastStatus
}

var testBroadcast = domain.Broadcast{
	ID:            "b1",
	Title:         "Morning show",
	Status:        domain.BroadcastReady,
	BoundStreamID: "s1",
}

func (f *fakeAPI) ListBroadcasts(context.Context) ([]domain.Broadcast, error) {
	return []domain.Broadcast{testBroadcast}, nil
}

func (f *fakeAPI) ListBroadcastStatus(context.Context, []string) ([]domain.Broadcast, error) {
	return []domain.Broadcast{testBroadcast}, nil
}

func (f *fakeAPI) ListStreams(context.Context, []string) ([]domain.Stream, error) {
	return []domain.Stream{{ID: "s1", Health: domain.StreamGood}}, nil
}

func (f *fakeAPI) TransitionBroadcast(_ context.Context, _ string, to domain.BroadcastStatus) (domain.BroadcastStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, to)
	return to, nil
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transitions)
}

func factoryFor(api ports.APIClient) ytcontrol.APIClientFactory {
	return func(context.Context, domain.Credential, int) (ports.APIClient, error) {
		return api, nil
	}
}

type recordingHandler struct {
	ytcontrol.BaseEventHandler
	mu      sync.Mutex
	phases  []ytcontrol.Phase
	actions []ytcontrol.ActionEvent
}

func (h *recordingHandler) OnStateChange(e ytcontrol.StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.phases = append(h.phases, e.Current)
}

func (h *recordingHandler) OnAction(e ytcontrol.ActionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions = append(h.actions, e)
}

func (h *recordingHandler) Phases() []ytcontrol.Phase {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ytcontrol.Phase(nil), h.phases...)
}

func (h *recordingHandler) Actions() []ytcontrol.ActionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ytcontrol.ActionEvent(nil), h.actions...)
}

func testConfig() ytcontrol.Config {
	cfg := ytcontrol.DefaultConfig()
	cfg.Module.ClientID = "client"
	cfg.Module.ClientSecret = "secret"
	cfg.Module.RefreshInterval = time.Hour
	cfg.ListenAddr = ""
	return cfg
}

func startService(t *testing.T, svc *ytcontrol.Service) (cancel func() error) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	return func() error {
		stop()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return")
			return nil
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Module.ClientID = ""

	_, err := ytcontrol.New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestService_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	api := &fakeAPI{}
	handler := &recordingHandler{}

	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithConfigPath(path),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{}),
		ytcontrol.WithAPIClientFactory(factoryFor(api)),
		ytcontrol.WithEventHandler(handler),
	)
	require.NoError(t, err)
	assert.Equal(t, ytcontrol.PhaseUninitialized, svc.Phase())

	stop := startService(t, svc)

	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseReady }, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, svc.Run(context.Background()), domain.ErrAlreadyRunning)

	// token persisted to the config file
	fc, err := config.LoadFileConfig(path)
	require.NoError(t, err)
	assert.Contains(t, fc.AuthToken, "access")
	assert.Equal(t, "client", fc.ClientID)

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/variables/unfinished_count", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"unfinished_count","value":"1"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/actions/start_broadcast",
		strings.NewReader(`{"options":{"broadcast":"b1"}}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool { return api.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(handler.Actions()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, handler.Actions()[0].Error)

	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `ytcontrol_state_transitions_total{from="Authorizing",to="Ready"} 1`)

	require.NoError(t, stop())
	assert.Equal(t, ytcontrol.PhaseDestroyed, svc.Phase())
	assert.Equal(t, []ytcontrol.Phase{
		ytcontrol.PhaseAuthorizing,
		ytcontrol.PhaseReady,
		ytcontrol.PhaseDestroyed,
	}, handler.Phases())
}

func TestService_AuthorizationFailure(t *testing.T) {
	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{err: domain.ErrAuthorization}),
		ytcontrol.WithAPIClientFactory(factoryFor(&fakeAPI{})),
		ytcontrol.WithoutMetrics(),
	)
	require.NoError(t, err)

	stop := startService(t, svc)
	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseError }, 2*time.Second, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Contains(t, rec.Body.String(), "Authorization failed")

	rec = httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, stop())
}

func TestService_Reconfigure(t *testing.T) {
	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{}),
		ytcontrol.WithAPIClientFactory(factoryFor(&fakeAPI{})),
	)
	require.NoError(t, err)

	stop := startService(t, svc)
	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseReady }, 2*time.Second, 5*time.Millisecond)

	next := svc.ModuleConfig()
	next.MaxUnfinishedBroadcastCount = 5
	svc.Reconfigure(next)

	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseReady }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, svc.ModuleConfig().MaxUnfinishedBroadcastCount)

	require.NoError(t, stop())
}

// trackingPlugin records initialization and shutdown order.
type trackingPlugin struct {
	name    string
	order   *[]string
	mu      *sync.Mutex
	initErr error
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(_ context.Context, cfg ytcontrol.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.order = append(*p.order, "init:"+p.name)
	if cfg.Current == nil || cfg.Reconfigure == nil || cfg.Logger == nil {
		return errors.New("incomplete plugin config")
	}
	return p.initErr
}

func (p *trackingPlugin) Shutdown(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	*p.order = append(*p.order, "shutdown:"+p.name)
	return nil
}

func TestService_PluginOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{}),
		ytcontrol.WithAPIClientFactory(factoryFor(&fakeAPI{})),
		ytcontrol.WithPlugin(&trackingPlugin{name: "a", order: &order, mu: &mu}),
		ytcontrol.WithPlugin(&trackingPlugin{name: "b", order: &order, mu: &mu}),
	)
	require.NoError(t, err)

	stop := startService(t, svc)
	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseReady }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"init:a", "init:b", "shutdown:b", "shutdown:a"}, order)
}

// reconfiguringPlugin reapplies the current configuration while shutting down,
// as a config watcher reacting to a late file event would.
type reconfiguringPlugin struct {
	cfg ytcontrol.PluginConfig
}

func (p *reconfiguringPlugin) Name() string { return "reconfiguring" }

func (p *reconfiguringPlugin) Initialize(_ context.Context, cfg ytcontrol.PluginConfig) error {
	p.cfg = cfg
	return nil
}

func (p *reconfiguringPlugin) Shutdown(context.Context) error {
	p.cfg.Reconfigure(p.cfg.Current())
	return nil
}

func TestService_PluginReconfigureDuringShutdown(t *testing.T) {
	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{}),
		ytcontrol.WithAPIClientFactory(factoryFor(&fakeAPI{})),
		ytcontrol.WithPlugin(&reconfiguringPlugin{}),
	)
	require.NoError(t, err)

	stop := startService(t, svc)
	require.Eventually(t, func() bool { return svc.Phase() == ytcontrol.PhaseReady }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, stop())

	assert.Equal(t, ytcontrol.PhaseDestroyed, svc.Phase())
	assert.Never(t, func() bool { return svc.Phase() != ytcontrol.PhaseDestroyed }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestService_PluginInitFailure(t *testing.T) {
	var mu sync.Mutex
	var order []string
	boom := errors.New("boom")

	svc, err := ytcontrol.New(testConfig(),
		ytcontrol.WithAuthorizer(&fakeAuthorizer{}),
		ytcontrol.WithAPIClientFactory(factoryFor(&fakeAPI{})),
		ytcontrol.WithPlugin(&trackingPlugin{name: "a", order: &order, mu: &mu}),
		ytcontrol.WithPlugin(&trackingPlugin{name: "b", order: &order, mu: &mu, initErr: boom}),
	)
	require.NoError(t, err)

	err = svc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ytcontrol.PhaseUninitialized, svc.Phase())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"init:a", "init:b", "shutdown:a"}, order)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Ready", ytcontrol.PhaseReady.String())
	assert.Equal(t, "Destroyed", ytcontrol.PhaseDestroyed.String())
}
