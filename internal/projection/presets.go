package projection

import (
	"fmt"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

// VariableNamespace prefixes variable references in preset button text.
const VariableNamespace = "youtube"

func varRef(name string) string {
	return "$(" + VariableNamespace + ":" + name + ")"
}

// ListPresets returns one set of buttons per tracked broadcast and per
// unfinished slot, plus the global refresh buttons.
func ListPresets(mem domain.StateMemory, rgb domain.RGBFunc, limit int) []domain.PresetDefinition {
	p := newPalette(rgb)
	presets := make([]domain.PresetDefinition, 0, 4*len(mem.Broadcasts)+4*limit+2)

	for _, b := range mem.SortedBroadcasts() {
		presets = append(presets, targetPresets(p, "Broadcast "+b.Title, b.ID, b.Title, BroadcastLifecycleVariable(b.ID))...)
	}
	for i := 0; i < limit; i++ {
		category := fmt.Sprintf("Unfinished broadcast #%d", i+1)
		presets = append(presets, targetPresets(p, category, SlotRef(i), varRef(UnfinishedTitleVariable(i)), UnfinishedStateVariable(i))...)
	}

	presets = append(presets,
		domain.PresetDefinition{
			Category: "Commands",
			Label:    "Refresh broadcast/stream states",
			Bank:     domain.Style{Text: "Refresh states", Size: "18", Color: domain.ColorRef(p.white), BgColor: domain.ColorRef(p.black)},
			Actions:  []domain.ActionRef{{Action: ActionRefreshStatus}},
		},
		domain.PresetDefinition{
			Category: "Commands",
			Label:    "Reload everything from YouTube",
			Bank:     domain.Style{Text: "Reload all", Size: "18", Color: domain.ColorRef(p.white), BgColor: domain.ColorRef(p.black)},
			Actions:  []domain.ActionRef{{Action: ActionRefreshFeedbacks}},
		},
	)
	return presets
}

func targetPresets(p palette, category, ref, title, stateVar string) []domain.PresetDefinition {
	target := map[string]string{BroadcastOption: ref}
	status := []domain.FeedbackRef{{Type: FeedbackBroadcastStatus, Options: target}}
	bank := func(text string) domain.Style {
		return domain.Style{Text: text, Size: "auto", Color: domain.ColorRef(p.white), BgColor: domain.ColorRef(p.black)}
	}

	return []domain.PresetDefinition{
		{
			Category:  category,
			Label:     "Start test " + title,
			Bank:      bank("Start test " + title),
			Actions:   []domain.ActionRef{{Action: ActionInitBroadcast, Options: target}},
			Feedbacks: status,
		},
		{
			Category:  category,
			Label:     "Go live " + title,
			Bank:      bank("Go live " + title),
			Actions:   []domain.ActionRef{{Action: ActionStartBroadcast, Options: target}},
			Feedbacks: status,
		},
		{
			Category:  category,
			Label:     "Finish " + title,
			Bank:      bank("Finish " + title),
			Actions:   []domain.ActionRef{{Action: ActionStopBroadcast, Options: target}},
			Feedbacks: status,
		},
		{
			Category:  category,
			Label:     "Toggle " + title,
			Bank:      bank(title + "\\n" + varRef(stateVar)),
			Actions:   []domain.ActionRef{{Action: ActionToggleBroadcast, Options: target}},
			Feedbacks: append(status, domain.FeedbackRef{Type: FeedbackStreamHealth, Options: target}),
		},
	}
}
