// Package youtube implements ports.APIClient on top of the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

var broadcastParts = []string{"id", "snippet", "status", "contentDetails"}

// Client implements ports.APIClient.
type Client struct {
	svc           *yt.Service
	maxBroadcasts int64
}

// Compile-time interface check.
var _ ports.APIClient = (*Client)(nil)

// NewFactory returns a ports.APIClientFactory.
//
// oauthConfig supplies the client settings used to refresh the token and
// onRefresh, when set, receives every token the client obtained by refreshing.
func NewFactory(oauthConfig func() *oauth2.Config, onRefresh func(domain.Credential), opts ...option.ClientOption) ports.APIClientFactory {
	return func(ctx context.Context, cred domain.Credential, maxBroadcasts int) (ports.APIClient, error) {
		if cred.Empty() {
			return nil, domain.ErrNoCredential
		}
		ts := &notifyingTokenSource{
			base:      oauthConfig().TokenSource(ctx, cred.Token),
			last:      cred.Token.AccessToken,
			onRefresh: onRefresh,
		}
		clientOpts := append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, opts...)
		return NewClient(ctx, maxBroadcasts, clientOpts...)
	}
}

// NewClient creates a Client with explicit service options.
func NewClient(ctx context.Context, maxBroadcasts int, opts ...option.ClientOption) (*Client, error) {
	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, maxBroadcasts: int64(maxBroadcasts)}, nil
}

// ListBroadcasts returns the broadcasts of the authorized channel.
func (c *Client) ListBroadcasts(ctx context.Context) ([]domain.Broadcast, error) {
	resp, err := c.svc.LiveBroadcasts.List(broadcastParts).
		Mine(true).
		MaxResults(c.maxBroadcasts).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	return convertBroadcasts(resp.Items), nil
}

// ListBroadcastStatus returns fresh copies of the given broadcasts.
func (c *Client) ListBroadcastStatus(ctx context.Context, ids []string) ([]domain.Broadcast, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := c.svc.LiveBroadcasts.List(broadcastParts).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list broadcast status: %w", err)
	}
	return convertBroadcasts(resp.Items), nil
}

// ListStreams returns the health of the given streams.
func (c *Client) ListStreams(ctx context.Context, ids []string) ([]domain.Stream, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	resp, err := c.svc.LiveStreams.List([]string{"id", "status"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	streams := make([]domain.Stream, 0, len(resp.Items))
	for _, item := range resp.Items {
		s := domain.Stream{ID: item.Id, Health: domain.StreamNoData}
		if item.Status != nil && item.Status.HealthStatus != nil && item.Status.HealthStatus.Status != "" {
			s.Health = domain.StreamHealth(item.Status.HealthStatus.Status)
		}
		streams = append(streams, s)
	}
	return streams, nil
}

// TransitionBroadcast moves a broadcast to a new status.
func (c *Client) TransitionBroadcast(ctx context.Context, id string, to domain.BroadcastStatus) (domain.BroadcastStatus, error) {
	resp, err := c.svc.LiveBroadcasts.Transition(string(to), id, []string{"id", "status"}).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("transition broadcast %s to %s: %w", id, to, err)
	}
	if resp.Status == nil || resp.Status.LifeCycleStatus == "" {
		return to, nil
	}
	return domain.BroadcastStatus(resp.Status.LifeCycleStatus), nil
}

func convertBroadcasts(items []*yt.LiveBroadcast) []domain.Broadcast {
	out := make([]domain.Broadcast, 0, len(items))
	for _, item := range items {
		out = append(out, convertBroadcast(item))
	}
	return out
}

func convertBroadcast(item *yt.LiveBroadcast) domain.Broadcast {
	b := domain.Broadcast{ID: item.Id}
	if s := item.Snippet; s != nil {
		b.Title = s.Title
		b.LiveChatID = s.LiveChatId
		if t, err := time.Parse(time.RFC3339, s.ScheduledStartTime); err == nil {
			b.ScheduledStart = t
		}
	}
	if item.Status != nil {
		b.Status = domain.BroadcastStatus(item.Status.LifeCycleStatus)
	}
	if d := item.ContentDetails; d != nil {
		b.BoundStreamID = d.BoundStreamId
		b.MonitorStreamEnabled = d.MonitorStream != nil && d.MonitorStream.EnableMonitorStream != nil && *d.MonitorStream.EnableMonitorStream
	}
	return b
}

// notifyingTokenSource reports tokens that differ from the last one seen.
type notifyingTokenSource struct {
	base      oauth2.TokenSource
	onRefresh func(domain.Credential)

	mu   sync.Mutex
	last string
}

func (s *notifyingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.onRefresh != nil {
		s.onRefresh(domain.Credential{Token: tok})
	}
	return tok, nil
}
