package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for graceful shutdown.
const ShutdownTimeout = 30 * time.Second

// Phase is the lifecycle phase of a module.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseAuthorizing
	PhaseReady
	PhaseError
	PhaseDestroyed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "Uninitialized"
	case PhaseAuthorizing:
		return "Authorizing"
	case PhaseReady:
		return "Ready"
	case PhaseError:
		return "Error"
	case PhaseDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// EventEmitter observes module activity.
// Calls are made synchronously and must not block.
type EventEmitter interface {
	OnStateChange(previous, current Phase, reason string)
	OnProjection(kind string)
	OnAction(action string, err error)
}

// Lifecycle validates phase transitions and tracks background workers.
type Lifecycle struct {
	mu           sync.RWMutex
	phase        Phase
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		phase:        PhaseUninitialized,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// Phase returns the current lifecycle phase.
func (l *Lifecycle) Phase() Phase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase
}

// TransitionTo attempts to transition to a new phase.
// Returns ErrInvalidTransition if the transition is not valid.
func (l *Lifecycle) TransitionTo(next Phase, reason string) error {
	l.mu.Lock()
	prev := l.phase

	if !validTransition(prev, next) {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, prev, next)
	}

	l.phase = next
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(prev, next, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)

	return nil
}

func validTransition(from, to Phase) bool {
	switch from {
	case PhaseUninitialized, PhaseError, PhaseDestroyed:
		return to == PhaseAuthorizing || (to == PhaseDestroyed && from != PhaseDestroyed)
	case PhaseAuthorizing:
		return to == PhaseReady || to == PhaseError || to == PhaseDestroyed
	case PhaseReady:
		return to == PhaseDestroyed
	default:
		return false
	}
}

// CanInit returns true if an initialization attempt can start.
func (l *Lifecycle) CanInit() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return validTransition(l.phase, PhaseAuthorizing)
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, forcing exit",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
