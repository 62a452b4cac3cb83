package projection

import (
	"context"
	"fmt"

	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// Action IDs.
const (
	ActionInitBroadcast    = "init_broadcast"
	ActionStartBroadcast   = "start_broadcast"
	ActionStopBroadcast    = "stop_broadcast"
	ActionToggleBroadcast  = "toggle_broadcast"
	ActionRefreshStatus    = "refresh_status"
	ActionRefreshFeedbacks = "refresh_feedbacks"
)

// ListActions returns the action definitions.
func ListActions(mem domain.StateMemory, limit int) []domain.ActionDefinition {
	target := []domain.Option{broadcastOption(mem, limit)}

	return []domain.ActionDefinition{
		{ID: ActionInitBroadcast, Label: "Start broadcast test", Options: target},
		{ID: ActionStartBroadcast, Label: "Go live", Options: target},
		{ID: ActionStopBroadcast, Label: "Finish broadcast", Options: target},
		{ID: ActionToggleBroadcast, Label: "Advance broadcast to next phase", Options: target},
		{ID: ActionRefreshStatus, Label: "Refresh broadcast/stream states"},
		{ID: ActionRefreshFeedbacks, Label: "Reload everything from YouTube"},
	}
}

// HandleAction runs an action against the live cache.
func HandleAction(ctx context.Context, event domain.ActionEvent, mem domain.StateMemory, ctl ports.BroadcastController) error {
	switch event.Action {
	case ActionRefreshStatus:
		return ctl.RefreshStatus(ctx)
	case ActionRefreshFeedbacks:
		return ctl.ReloadEverything(ctx)
	case ActionInitBroadcast, ActionStartBroadcast, ActionStopBroadcast, ActionToggleBroadcast:
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, event.Action)
	}

	ref := event.Options[BroadcastOption]
	b, ok := ResolveBroadcast(ref, mem)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownBroadcast, ref)
	}

	var to domain.BroadcastStatus
	switch event.Action {
	case ActionInitBroadcast:
		to = domain.BroadcastTesting
	case ActionStartBroadcast:
		to = domain.BroadcastLive
	case ActionStopBroadcast:
		to = domain.BroadcastComplete
	case ActionToggleBroadcast:
		next, err := NextStatus(b)
		if err != nil {
			return err
		}
		to = next
	}

	return ctl.TransitionBroadcast(ctx, b.ID, to)
}

// NextStatus returns the status a toggle moves the broadcast to.
// Broadcasts without a monitor stream skip the testing phase.
func NextStatus(b domain.Broadcast) (domain.BroadcastStatus, error) {
	switch b.Status {
	case domain.BroadcastCreated, domain.BroadcastReady:
		if b.MonitorStreamEnabled {
			return domain.BroadcastTesting, nil
		}
		return domain.BroadcastLive, nil
	case domain.BroadcastTesting:
		return domain.BroadcastLive, nil
	case domain.BroadcastLive:
		return domain.BroadcastComplete, nil
	default:
		return "", fmt.Errorf("%w: broadcast %s is %s", domain.ErrInvalidTransition, b.ID, b.Status)
	}
}
