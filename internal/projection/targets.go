package projection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

// BroadcastOption is the option key that selects the broadcast an action or
// feedback applies to.
const BroadcastOption = "broadcast"

const slotPrefix = "unfinished_"

// SlotRef returns the option value that targets unfinished slot i.
func SlotRef(i int) string {
	return slotPrefix + strconv.Itoa(i)
}

// BroadcastChoices lists every tracked broadcast followed by limit unfinished slots.
func BroadcastChoices(mem domain.StateMemory, limit int) []domain.Choice {
	choices := make([]domain.Choice, 0, len(mem.Broadcasts)+limit)
	for _, b := range mem.SortedBroadcasts() {
		choices = append(choices, domain.Choice{ID: b.ID, Label: b.Title})
	}
	for i := 0; i < limit; i++ {
		choices = append(choices, domain.Choice{ID: SlotRef(i), Label: fmt.Sprintf("Unfinished broadcast #%d", i+1)})
	}
	return choices
}

// broadcastOption builds the dropdown selecting a broadcast or slot.
func broadcastOption(mem domain.StateMemory, limit int) domain.Option {
	choices := BroadcastChoices(mem, limit)
	def := ""
	if len(choices) > 0 {
		def = choices[0].ID
	}
	return domain.Option{
		Type:    domain.OptionDropdown,
		ID:      BroadcastOption,
		Label:   "Broadcast:",
		Default: def,
		Choices: choices,
	}
}

// ResolveBroadcast looks up the broadcast referenced by an option value.
// A slot reference ("unfinished_<n>") always resolves against the current
// unfinished order, even when a broadcast has the same ID; anything else is
// looked up as a broadcast ID.
func ResolveBroadcast(ref string, mem domain.StateMemory) (domain.Broadcast, bool) {
	if suffix, ok := strings.CutPrefix(ref, slotPrefix); ok {
		if i, err := strconv.Atoi(suffix); err == nil {
			if i < 0 || i >= len(mem.UnfinishedBroadcasts) {
				return domain.Broadcast{}, false
			}
			return mem.UnfinishedBroadcasts[i], true
		}
	}
	b, ok := mem.Broadcasts[ref]
	return b, ok
}
