// Package projection derives control-surface artifacts (variables, presets,
// feedbacks and actions) from the broadcast cache.
//
// Every function here is a pure function of a domain.StateMemory snapshot and
// the unfinished slot limit. Engine pushes the derived artifacts to the host
// at one of three granularities:
//
//   - ReloadAll replaces every definition set and all variable values
//   - ReloadStates refreshes variable values only
//   - ReloadBroadcast refreshes the variables of a single broadcast
//
// Only ReloadAll changes the shape of the surface. Slot variables
// ("unfinished_<i>") are positional and recomputed from the current order on
// every call.
package projection
