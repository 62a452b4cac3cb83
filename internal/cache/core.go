// Package cache keeps the broadcast and stream state of the authorized
// channel up to date by polling the platform API.
package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// maxBackoffFactor bounds the poll delay after repeated failures, relative
// to the refresh interval.
const maxBackoffFactor = 8

// Core implements ports.StateCache.
// It exclusively owns its StateMemory; readers receive deep copies.
type Core struct {
	api      ports.APIClient
	listener ports.CacheListener
	logger   ports.Logger
	interval time.Duration

	mu        sync.RWMutex
	memory    domain.StateMemory
	destroyed bool
	cancel    context.CancelFunc

	// refreshMu serializes API round trips that rewrite memory.
	refreshMu sync.Mutex

	wg          sync.WaitGroup
	destroyOnce sync.Once
}

// New creates a Core polling api every interval and reporting to listener.
func New(api ports.APIClient, interval time.Duration, listener ports.CacheListener, logger ports.Logger) *Core {
	return &Core{
		api:      api,
		listener: listener,
		logger:   logger,
		interval: interval,
		memory:   domain.NewStateMemory(nil, nil),
	}
}

// Factory returns a ports.StateCacheFactory building Cores that log to logger.
func Factory(logger ports.Logger) ports.StateCacheFactory {
	return func(api ports.APIClient, interval time.Duration, listener ports.CacheListener) ports.StateCache {
		return New(api, interval, listener, logger)
	}
}

// Init fetches the broadcast list and starts polling.
// The poller outlives ctx and is stopped by Destroy.
func (c *Core) Init(ctx context.Context) error {
	c.refreshMu.Lock()
	mem, err := c.fetchAll(ctx)
	c.refreshMu.Unlock()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return fmt.Errorf("%w: cache destroyed during init", domain.ErrDataFetch)
	}
	c.memory = mem

	pollCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.pollLoop(pollCtx)

	c.logger.Debug("state cache initialized",
		ports.Int("broadcasts", len(mem.Broadcasts)),
		ports.Int("unfinished", len(mem.UnfinishedBroadcasts)),
		ports.Duration("refresh_interval", c.interval),
	)
	return nil
}

// Destroy stops polling and waits for the poller to exit. Idempotent.
func (c *Core) Destroy() {
	c.destroyOnce.Do(func() {
		c.mu.Lock()
		c.destroyed = true
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		c.wg.Wait()
		c.logger.Debug("state cache destroyed")
	})
}

// Memory returns a snapshot of the current state.
func (c *Core) Memory() domain.StateMemory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.memory.Clone()
}

// RefreshStatus polls the states of unfinished broadcasts and of their bound
// streams, then notifies ReloadStates.
func (c *Core) RefreshStatus(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.Memory()
	ids := make([]string, 0, len(current.UnfinishedBroadcasts))
	for _, b := range current.UnfinishedBroadcasts {
		ids = append(ids, b.ID)
	}

	var updated []domain.Broadcast
	if len(ids) > 0 {
		var err error
		updated, err = c.api.ListBroadcastStatus(ctx, ids)
		if err != nil {
			return fmt.Errorf("%w: list broadcast status: %v", domain.ErrDataFetch, err)
		}
	}
	for _, b := range updated {
		current.Broadcasts[b.ID] = b
	}

	streams, err := c.fetchStreams(ctx, current.UnfinishedBroadcasts, updated)
	if err != nil {
		return err
	}
	for _, s := range streams {
		current.Streams[s.ID] = s
	}
	current.RebuildUnfinished()

	snapshot := c.replace(current)
	if snapshot == nil {
		return nil
	}
	c.listener.ReloadStates(*snapshot)
	return nil
}

// TransitionBroadcast moves a broadcast to a new status.
// The listener receives ReloadBroadcast, or ReloadStates when the set of
// unfinished broadcasts changed and other slots shifted.
func (c *Core) TransitionBroadcast(ctx context.Context, id string, to domain.BroadcastStatus) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.Memory()
	b, ok := current.Broadcasts[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownBroadcast, id)
	}

	status, err := c.api.TransitionBroadcast(ctx, id, to)
	if err != nil {
		return fmt.Errorf("transition %s to %s: %w", id, to, err)
	}
	c.logger.Info("broadcast transitioned",
		ports.String("broadcast", id),
		ports.String("from", string(b.Status)),
		ports.String("to", string(status)),
	)

	wasUnfinished := !b.Status.Finished()
	b.Status = status
	current.Broadcasts[id] = b
	current.RebuildUnfinished()

	snapshot := c.replace(current)
	if snapshot == nil {
		return nil
	}
	if wasUnfinished != !status.Finished() {
		c.listener.ReloadStates(*snapshot)
		return nil
	}
	c.listener.ReloadBroadcast(b, *snapshot)
	return nil
}

// ReloadEverything refetches the broadcast list and notifies ReloadAll.
func (c *Core) ReloadEverything(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	mem, err := c.fetchAll(ctx)
	if err != nil {
		return err
	}
	snapshot := c.replace(mem)
	if snapshot == nil {
		return nil
	}
	c.listener.ReloadAll(*snapshot)
	return nil
}

// replace installs mem and returns a snapshot for the listener, or nil when
// the cache has been destroyed in the meantime.
func (c *Core) replace(mem domain.StateMemory) *domain.StateMemory {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return nil
	}
	c.memory = mem
	snapshot := mem.Clone()
	return &snapshot
}

func (c *Core) fetchAll(ctx context.Context) (domain.StateMemory, error) {
	broadcasts, err := c.api.ListBroadcasts(ctx)
	if err != nil {
		return domain.StateMemory{}, fmt.Errorf("%w: list broadcasts: %v", domain.ErrDataFetch, err)
	}
	unfinished := make([]domain.Broadcast, 0, len(broadcasts))
	for _, b := range broadcasts {
		if !b.Status.Finished() {
			unfinished = append(unfinished, b)
		}
	}
	streams, err := c.fetchStreams(ctx, unfinished, nil)
	if err != nil {
		return domain.StateMemory{}, err
	}
	return domain.NewStateMemory(broadcasts, streams), nil
}

// fetchStreams queries the streams bound to the given broadcasts.
func (c *Core) fetchStreams(ctx context.Context, sets ...[]domain.Broadcast) ([]domain.Stream, error) {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, b := range set {
			if b.BoundStreamID != "" {
				seen[b.BoundStreamID] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	streams, err := c.api.ListStreams(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: list streams: %v", domain.ErrDataFetch, err)
	}
	return streams, nil
}

// pollLoop refreshes states every interval, backing off on failure.
func (c *Core) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	bo := newBackoff(c.interval, maxBackoffFactor*c.interval)
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := c.interval
		if err := c.RefreshStatus(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = bo.Next()
			c.logger.Warn("state refresh failed",
				ports.Err(err),
				ports.Duration("retry_in", wait),
			)
		} else {
			bo.Reset()
		}
		timer.Reset(wait)
	}
}
