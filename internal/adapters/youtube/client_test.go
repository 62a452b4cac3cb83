package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

type apiServer struct {
	t        *testing.T
	mu       sync.Mutex
	requests []*http.Request
}

func (s *apiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(context.Background()))
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	var body interface{}
	switch {
	case strings.HasSuffix(r.URL.Path, "/liveBroadcasts/transition"):
		body = map[string]interface{}{
			"id":     r.URL.Query().Get("id"),
			"status": map[string]string{"lifeCycleStatus": "testStarting"},
		}
	case strings.HasSuffix(r.URL.Path, "/liveBroadcasts"):
		body = map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id": "b1",
					"snippet": map[string]string{
						"title":              "Sunday service",
						"scheduledStartTime": "2026-10-18T09:00:00Z",
						"liveChatId":         "chat1",
					},
					"status":         map[string]string{"lifeCycleStatus": "ready"},
					"contentDetails": map[string]interface{}{"boundStreamId": "s1", "monitorStream": map[string]bool{"enableMonitorStream": true}},
				},
				{
					"id":      "b2",
					"snippet": map[string]string{"title": "Archive"},
					"status":  map[string]string{"lifeCycleStatus": "complete"},
				},
			},
		}
	case strings.HasSuffix(r.URL.Path, "/liveStreams"):
		body = map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "s1", "status": map[string]interface{}{"healthStatus": map[string]string{"status": "good"}}},
				{"id": "s2"},
			},
		}
	default:
		http.NotFound(w, r)
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.t.Errorf("encode: %v", err)
	}
}

func (s *apiServer) last() *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestClient(t *testing.T) (*Client, *apiServer) {
	t.Helper()
	api := &apiServer{t: t}
	ts := httptest.NewServer(api)
	t.Cleanup(ts.Close)

	c, err := NewClient(context.Background(), 7,
		option.WithEndpoint(ts.URL+"/"),
		option.WithHTTPClient(ts.Client()),
	)
	require.NoError(t, err)
	return c, api
}

func TestClient_ListBroadcasts(t *testing.T) {
	c, api := newTestClient(t)

	got, err := c.ListBroadcasts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	q := api.last().URL.Query()
	assert.Equal(t, "true", q.Get("mine"))
	assert.Equal(t, "7", q.Get("maxResults"))

	assert.Equal(t, domain.Broadcast{
		ID:                   "b1",
		Title:                "Sunday service",
		Status:               domain.BroadcastReady,
		BoundStreamID:        "s1",
		MonitorStreamEnabled: true,
		ScheduledStart:       time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		LiveChatID:           "chat1",
	}, got[0])
	assert.Equal(t, domain.BroadcastComplete, got[1].Status)
	assert.False(t, got[1].MonitorStreamEnabled)
}

func TestClient_ListBroadcastStatus(t *testing.T) {
	c, api := newTestClient(t)

	got, err := c.ListBroadcastStatus(context.Background(), []string{"b1", "b2"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"b1", "b2"}, api.last().URL.Query()["id"])

	got, err = c.ListBroadcastStatus(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_ListStreams(t *testing.T) {
	c, _ := newTestClient(t)

	got, err := c.ListStreams(context.Background(), []string{"s1", "s2"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Stream{
		{ID: "s1", Health: domain.StreamGood},
		{ID: "s2", Health: domain.StreamNoData},
	}, got)
}

func TestClient_TransitionBroadcast(t *testing.T) {
	c, api := newTestClient(t)

	got, err := c.TransitionBroadcast(context.Background(), "b1", domain.BroadcastTesting)
	require.NoError(t, err)
	assert.Equal(t, domain.BroadcastTestStarting, got)

	req := api.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "testing", req.URL.Query().Get("broadcastStatus"))
	assert.Equal(t, "b1", req.URL.Query().Get("id"))
}

func TestClient_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"quota exceeded"}}`))
	}))
	defer ts.Close()

	c, err := NewClient(context.Background(), 5, option.WithEndpoint(ts.URL+"/"), option.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	_, err = c.ListBroadcasts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

type staticSource struct {
	mu   sync.Mutex
	toks []string
}

func (s *staticSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := &oauth2.Token{AccessToken: s.toks[0]}
	if len(s.toks) > 1 {
		s.toks = s.toks[1:]
	}
	return tok, nil
}

func TestNotifyingTokenSource(t *testing.T) {
	var seen []string
	ts := &notifyingTokenSource{
		base:      &staticSource{toks: []string{"a", "a", "b", "b"}},
		last:      "a",
		onRefresh: func(c domain.Credential) { seen = append(seen, c.Token.AccessToken) },
	}
	for i := 0; i < 4; i++ {
		_, err := ts.Token()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"b"}, seen)
}

func TestNewFactory_EmptyCredential(t *testing.T) {
	f := NewFactory(func() *oauth2.Config { return &oauth2.Config{} }, nil)
	_, err := f(context.Background(), domain.Credential{}, 5)
	assert.ErrorIs(t, err, domain.ErrNoCredential)
}

func TestNewFactory_UsesToken(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer ts.Close()

	f := NewFactory(func() *oauth2.Config { return &oauth2.Config{} }, nil, option.WithEndpoint(ts.URL+"/"))
	api, err := f(context.Background(), domain.Credential{Token: &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}}, 5)
	require.NoError(t, err)

	_, err = api.ListBroadcasts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", auth)
}
