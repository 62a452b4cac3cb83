package projection

import (
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// Engine pushes derived artifacts to the host.
// It holds no state between calls.
type Engine struct {
	host ports.Host
	rgb  domain.RGBFunc
}

// NewEngine creates an Engine that renders colours with rgb.
// A nil rgb uses domain.RGB.
func NewEngine(host ports.Host, rgb domain.RGBFunc) *Engine {
	if rgb == nil {
		rgb = domain.RGB
	}
	return &Engine{host: host, rgb: rgb}
}

// RGB returns the colour resolver used by the engine.
func (e *Engine) RGB() domain.RGBFunc {
	return e.rgb
}

// ReloadAll replaces every definition set and all variable values, then
// asks the host to re-check all feedbacks.
func (e *Engine) ReloadAll(mem domain.StateMemory, limit int) {
	e.host.SetVariableDefinitions(DeclareVars(mem, limit))
	e.host.SetVariableValues(ExportVars(mem, limit))
	e.host.SetPresetDefinitions(ListPresets(mem, e.rgb, limit))
	e.host.SetFeedbackDefinitions(ListFeedbacks(mem, e.rgb, limit))
	e.host.SetActionDefinitions(ListActions(mem, limit))
	e.host.CheckFeedbacks()
}

// ReloadStates refreshes variable values only.
func (e *Engine) ReloadStates(mem domain.StateMemory, limit int) {
	e.host.SetVariableValues(ExportVars(mem, limit))
	e.host.CheckFeedbacks()
}

// ReloadBroadcast refreshes the variables of a single broadcast.
// Broadcast variables are updated only when b is tracked; slot variables only
// when b is unfinished, at its current index and within limit.
func (e *Engine) ReloadBroadcast(b domain.Broadcast, mem domain.StateMemory, limit int) {
	var values []domain.VariableValue
	if _, ok := mem.Broadcasts[b.ID]; ok {
		values = append(values, BroadcastVars(b, mem)...)
	}
	if i := mem.UnfinishedIndex(b.ID); i > -1 && i < limit {
		values = append(values, UnfinishedSlotVars(i, b, mem)...)
	}
	if len(values) > 0 {
		e.host.SetVariableValues(values)
	}
	e.host.CheckFeedbacks(FeedbackBroadcastStatus)
}
