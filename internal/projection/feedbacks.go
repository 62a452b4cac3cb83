package projection

import "github.com/bft-labs/ytcontrol/internal/domain"

// Feedback types.
const (
	FeedbackBroadcastStatus = "broadcast_status"
	FeedbackStreamHealth    = "broadcast_bound_stream_health"
)

// Colour option keys.
const (
	optText       = "text"
	optReady      = "bg_ready"
	optTesting    = "bg_testing"
	optLive       = "bg_live"
	optComplete   = "bg_complete"
	optHealthGood = "bg_good"
	optHealthOK   = "bg_ok"
	optHealthBad  = "bg_bad"
	optNoData     = "bg_nodata"
)

type palette struct {
	white, black, ready, testing, live, complete, good, ok, bad, noData domain.Color
}

func newPalette(rgb domain.RGBFunc) palette {
	return palette{
		white:    rgb(255, 255, 255),
		black:    rgb(0, 0, 0),
		ready:    rgb(209, 209, 0),
		testing:  rgb(0, 172, 0),
		live:     rgb(222, 0, 0),
		complete: rgb(0, 0, 168),
		good:     rgb(0, 204, 0),
		ok:       rgb(204, 204, 0),
		bad:      rgb(255, 102, 0),
		noData:   rgb(87, 87, 87),
	}
}

func colorOption(id, label string, c domain.Color) domain.Option {
	return domain.Option{Type: domain.OptionColorPicker, ID: id, Label: label, Default: c.Hex()}
}

// ListFeedbacks returns the feedback definitions.
func ListFeedbacks(mem domain.StateMemory, rgb domain.RGBFunc, limit int) []domain.FeedbackDefinition {
	p := newPalette(rgb)
	target := broadcastOption(mem, limit)

	return []domain.FeedbackDefinition{
		{
			ID:          FeedbackBroadcastStatus,
			Label:       "Broadcast status",
			Description: "Feedback providing information about state of a broadcast in a broadcast lifecycle",
			Options: []domain.Option{
				target,
				colorOption(optText, "Text:", p.white),
				colorOption(optReady, "Background color (ready):", p.ready),
				colorOption(optTesting, "Background color (testing):", p.testing),
				colorOption(optLive, "Background color (live):", p.live),
				colorOption(optComplete, "Background color (complete):", p.complete),
			},
		},
		{
			ID:          FeedbackStreamHealth,
			Label:       "Health of stream bound to broadcast",
			Description: "Feedback reflecting the streaming health of the stream bound to a broadcast",
			Options: []domain.Option{
				target,
				colorOption(optText, "Text:", p.white),
				colorOption(optHealthGood, "Background color (good):", p.good),
				colorOption(optHealthOK, "Background color (ok):", p.ok),
				colorOption(optHealthBad, "Background color (bad):", p.bad),
				colorOption(optNoData, "Background color (no data):", p.noData),
			},
		},
	}
}

// HandleFeedback renders the style of a feedback.
// Unknown feedback types and unresolvable broadcasts render the empty style.
// blink is sampled by the caller (see BlinkPhase); broadcasts in a starting
// state alternate between the previous and the target colour on it.
func HandleFeedback(event domain.FeedbackEvent, mem domain.StateMemory, rgb domain.RGBFunc, blink bool) domain.Style {
	b, ok := ResolveBroadcast(event.Options[BroadcastOption], mem)
	if !ok {
		return domain.Style{}
	}
	p := newPalette(rgb)
	color := func(key string, fallback domain.Color) domain.Color {
		if c, ok := domain.ParseColor(event.Options[key]); ok {
			return c
		}
		return fallback
	}

	var bg domain.Color
	switch event.Type {
	case FeedbackBroadcastStatus:
		ready := color(optReady, p.ready)
		testing := color(optTesting, p.testing)
		live := color(optLive, p.live)
		switch b.Status {
		case domain.BroadcastCreated, domain.BroadcastReady:
			bg = ready
		case domain.BroadcastTestStarting:
			bg = pick(blink, testing, ready)
		case domain.BroadcastTesting:
			bg = testing
		case domain.BroadcastLiveStarting:
			bg = pick(blink, live, testing)
		case domain.BroadcastLive:
			bg = live
		case domain.BroadcastComplete, domain.BroadcastRevoked:
			bg = color(optComplete, p.complete)
		default:
			return domain.Style{}
		}
	case FeedbackStreamHealth:
		switch mem.StreamHealth(b) {
		case domain.StreamGood:
			bg = color(optHealthGood, p.good)
		case domain.StreamOK:
			bg = color(optHealthOK, p.ok)
		case domain.StreamBad:
			bg = color(optHealthBad, p.bad)
		default:
			bg = color(optNoData, p.noData)
		}
	default:
		return domain.Style{}
	}

	return domain.Style{
		Color:   domain.ColorRef(color(optText, p.white)),
		BgColor: domain.ColorRef(bg),
	}
}

func pick(phase bool, on, off domain.Color) domain.Color {
	if phase {
		return on
	}
	return off
}
