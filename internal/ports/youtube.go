package ports

import (
	"context"
	"time"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

// Authorizer obtains a credential for the platform API.
type Authorizer interface {
	// Authorize resolves a credential, possibly prompting for consent.
	// isReconfig tells the flow that it runs as part of a reconfiguration
	// and may reuse prior consent state.
	Authorize(ctx context.Context, isReconfig bool) (domain.Credential, error)

	// Cancel aborts any outstanding attempt. Safe to call when idle.
	Cancel()
}

// APIClient wraps the platform's broadcast and stream endpoints.
type APIClient interface {
	// ListBroadcasts returns the broadcasts owned by the authorized channel,
	// limited to the configured maximum broadcast count.
	ListBroadcasts(ctx context.Context) ([]domain.Broadcast, error)

	// ListBroadcastStatus returns up-to-date copies of the given broadcasts.
	ListBroadcastStatus(ctx context.Context, ids []string) ([]domain.Broadcast, error)

	// ListStreams returns the health of the given streams.
	ListStreams(ctx context.Context, ids []string) ([]domain.Stream, error)

	// TransitionBroadcast moves a broadcast to a new lifecycle status and
	// returns the status reported by the platform afterwards.
	TransitionBroadcast(ctx context.Context, id string, to domain.BroadcastStatus) (domain.BroadcastStatus, error)
}

// APIClientFactory constructs an APIClient from a credential and the
// configured maximum broadcast count.
type APIClientFactory func(ctx context.Context, cred domain.Credential, maxBroadcasts int) (APIClient, error)

// CacheListener receives state change notifications from a StateCache.
type CacheListener interface {
	// ReloadAll is called when the set of tracked broadcasts may have changed shape.
	ReloadAll(memory domain.StateMemory)

	// ReloadStates is called after a poll tick refreshed broadcast and stream states.
	ReloadStates(memory domain.StateMemory)

	// ReloadBroadcast is called after a single broadcast changed.
	ReloadBroadcast(broadcast domain.Broadcast, memory domain.StateMemory)
}

// BroadcastController is the set of operations actions can invoke on a live cache.
type BroadcastController interface {
	// TransitionBroadcast moves a broadcast to a new lifecycle status.
	TransitionBroadcast(ctx context.Context, id string, to domain.BroadcastStatus) error

	// RefreshStatus polls broadcast and stream states immediately.
	RefreshStatus(ctx context.Context) error

	// ReloadEverything refetches the broadcast list.
	ReloadEverything(ctx context.Context) error
}

// StateCache owns polling against an APIClient and the StateMemory it fills.
type StateCache interface {
	BroadcastController

	// Init performs the initial fetch and starts polling.
	Init(ctx context.Context) error

	// Destroy stops polling. Idempotent.
	Destroy()

	// Memory returns a snapshot of the current state.
	Memory() domain.StateMemory
}

// StateCacheFactory constructs a StateCache.
type StateCacheFactory func(api APIClient, refreshInterval time.Duration, listener CacheListener) StateCache
