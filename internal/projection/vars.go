package projection

import (
	"fmt"
	"strconv"

	"github.com/bft-labs/ytcontrol/internal/domain"
)

// UnfinishedCountVariable holds the number of unfinished broadcasts.
const UnfinishedCountVariable = "unfinished_count"

// BroadcastLifecycleVariable returns the name of the lifecycle variable of a broadcast.
func BroadcastLifecycleVariable(id string) string {
	return "broadcast_" + id + "_lifecycle"
}

// BroadcastHealthVariable returns the name of the stream health variable of a broadcast.
func BroadcastHealthVariable(id string) string {
	return "broadcast_" + id + "_health"
}

// UnfinishedTitleVariable returns the name of the title variable of slot i.
func UnfinishedTitleVariable(i int) string {
	return "unfinished_" + strconv.Itoa(i)
}

// UnfinishedStateVariable returns the name of the lifecycle variable of slot i.
func UnfinishedStateVariable(i int) string {
	return "unfinished_state_" + strconv.Itoa(i)
}

// UnfinishedShortIDVariable returns the name of the broadcast ID variable of slot i.
func UnfinishedShortIDVariable(i int) string {
	return "unfinished_short_id_" + strconv.Itoa(i)
}

// UnfinishedHealthVariable returns the name of the stream health variable of slot i.
func UnfinishedHealthVariable(i int) string {
	return "unfinished_health_" + strconv.Itoa(i)
}

// StatusLabel returns the display text of a broadcast status.
func StatusLabel(s domain.BroadcastStatus) string {
	switch s {
	case domain.BroadcastCreated:
		return "Created"
	case domain.BroadcastReady:
		return "Ready"
	case domain.BroadcastTestStarting:
		return "Test starting"
	case domain.BroadcastTesting:
		return "Testing"
	case domain.BroadcastLiveStarting:
		return "Going live"
	case domain.BroadcastLive:
		return "Live"
	case domain.BroadcastComplete:
		return "Finished"
	case domain.BroadcastRevoked:
		return "Revoked"
	default:
		return string(s)
	}
}

// HealthLabel returns the display text of a stream health value.
func HealthLabel(h domain.StreamHealth) string {
	switch h {
	case domain.StreamGood:
		return "Good"
	case domain.StreamOK:
		return "OK"
	case domain.StreamBad:
		return "Bad"
	case domain.StreamNoData:
		return "No data"
	default:
		return string(h)
	}
}

// DeclareVars lists the variable definitions for every tracked broadcast and
// for limit unfinished slots.
func DeclareVars(mem domain.StateMemory, limit int) []domain.VariableDefinition {
	defs := make([]domain.VariableDefinition, 0, 2*len(mem.Broadcasts)+4*limit+1)
	for _, b := range mem.SortedBroadcasts() {
		defs = append(defs,
			domain.VariableDefinition{Name: BroadcastLifecycleVariable(b.ID), Label: fmt.Sprintf("Broadcast %q lifecycle", b.Title)},
			domain.VariableDefinition{Name: BroadcastHealthVariable(b.ID), Label: fmt.Sprintf("Broadcast %q stream health", b.Title)},
		)
	}
	for i := 0; i < limit; i++ {
		n := i + 1
		defs = append(defs,
			domain.VariableDefinition{Name: UnfinishedTitleVariable(i), Label: fmt.Sprintf("Unfinished broadcast #%d name", n)},
			domain.VariableDefinition{Name: UnfinishedStateVariable(i), Label: fmt.Sprintf("Unfinished broadcast #%d lifecycle", n)},
			domain.VariableDefinition{Name: UnfinishedShortIDVariable(i), Label: fmt.Sprintf("Unfinished broadcast #%d ID", n)},
			domain.VariableDefinition{Name: UnfinishedHealthVariable(i), Label: fmt.Sprintf("Unfinished broadcast #%d stream health", n)},
		)
	}
	return append(defs, domain.VariableDefinition{Name: UnfinishedCountVariable, Label: "Number of unfinished broadcasts"})
}

// ExportVars derives the values of every variable declared by DeclareVars.
// Slots past the end of the unfinished sequence render as empty strings.
func ExportVars(mem domain.StateMemory, limit int) []domain.VariableValue {
	values := make([]domain.VariableValue, 0, 2*len(mem.Broadcasts)+4*limit+1)
	for _, b := range mem.SortedBroadcasts() {
		values = append(values, BroadcastVars(b, mem)...)
	}
	for i := 0; i < limit; i++ {
		if i < len(mem.UnfinishedBroadcasts) {
			values = append(values, UnfinishedSlotVars(i, mem.UnfinishedBroadcasts[i], mem)...)
			continue
		}
		values = append(values, emptySlotVars(i)...)
	}
	return append(values, domain.VariableValue{
		Name:  UnfinishedCountVariable,
		Value: strconv.Itoa(len(mem.UnfinishedBroadcasts)),
	})
}

// BroadcastVars derives the per-broadcast variable values of b.
func BroadcastVars(b domain.Broadcast, mem domain.StateMemory) []domain.VariableValue {
	return []domain.VariableValue{
		{Name: BroadcastLifecycleVariable(b.ID), Value: StatusLabel(b.Status)},
		{Name: BroadcastHealthVariable(b.ID), Value: HealthLabel(mem.StreamHealth(b))},
	}
}

// UnfinishedSlotVars derives the slot variable values of b at position i.
func UnfinishedSlotVars(i int, b domain.Broadcast, mem domain.StateMemory) []domain.VariableValue {
	return []domain.VariableValue{
		{Name: UnfinishedTitleVariable(i), Value: b.Title},
		{Name: UnfinishedStateVariable(i), Value: StatusLabel(b.Status)},
		{Name: UnfinishedShortIDVariable(i), Value: b.ID},
		{Name: UnfinishedHealthVariable(i), Value: HealthLabel(mem.StreamHealth(b))},
	}
}

func emptySlotVars(i int) []domain.VariableValue {
	return []domain.VariableValue{
		{Name: UnfinishedTitleVariable(i)},
		{Name: UnfinishedStateVariable(i)},
		{Name: UnfinishedShortIDVariable(i)},
		{Name: UnfinishedHealthVariable(i)},
	}
}
