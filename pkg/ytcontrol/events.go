package ytcontrol

import (
	"context"

	"github.com/bft-labs/ytcontrol/internal/app"
)

// Phase is the lifecycle phase of the module.
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
	return toInternalPhase(p).String()
}

// StateChangeEvent is emitted on every module phase transition.
type StateChangeEvent struct {
	Previous Phase
	Current  Phase
	Reason   string
}

// ProjectionEvent is emitted after the cache was projected onto the surface.
type ProjectionEvent struct {
	// Kind is "all", "states" or "broadcast".
	Kind string
}

// ActionEvent is emitted after an action finished.
type ActionEvent struct {
	Action string
	Error  error
}

// EventHandler receives service events.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnProjection(event ProjectionEvent)
	OnAction(event ActionEvent)
}

// BaseEventHandler provides no-op implementations of all EventHandler methods.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnProjection(ProjectionEvent)   {}
func (BaseEventHandler) OnAction(ActionEvent)           {}

// PluginConfig is handed to plugins on initialization.
type PluginConfig struct {
	// ConfigPath is the configuration file, empty when none is used.
	ConfigPath string

	Logger Logger

	// Current returns the active module configuration.
	Current func() ModuleConfig

	// Reconfigure restarts the module with new settings.
	Reconfigure func(ModuleConfig)
}

// Plugin extends the service with optional functionality.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

func convertPhase(p app.Phase) Phase {
	switch p {
	case app.PhaseAuthorizing:
		return PhaseAuthorizing
	case app.PhaseReady:
		return PhaseReady
	case app.PhaseError:
		return PhaseError
	case app.PhaseDestroyed:
		return PhaseDestroyed
	default:
		return PhaseUninitialized
	}
}

func toInternalPhase(p Phase) app.Phase {
	switch p {
	case PhaseAuthorizing:
		return app.PhaseAuthorizing
	case PhaseReady:
		return app.PhaseReady
	case PhaseError:
		return app.PhaseError
	case PhaseDestroyed:
		return app.PhaseDestroyed
	default:
		return app.PhaseUninitialized
	}
}
