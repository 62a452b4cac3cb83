package ports

import (
	"context"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
)

// Host is the control-surface application the module is loaded into.
// Calls are made while the module holds its lock; implementations must not
// call back into the module synchronously.
type Host interface {
	// SetStatus reports the module status shown by the host.
	SetStatus(level domain.StatusLevel, message string)

	SetVariableDefinitions(defs []domain.VariableDefinition)
	SetVariableValues(values []domain.VariableValue)
	SetPresetDefinitions(presets []domain.PresetDefinition)
	SetFeedbackDefinitions(defs []domain.FeedbackDefinition)
	SetActionDefinitions(defs []domain.ActionDefinition)

	// CheckFeedbacks asks the host to re-evaluate feedbacks of the given types,
	// or all feedbacks when no type is given.
	CheckFeedbacks(types ...string)

	// SaveConfig persists the module configuration.
	SaveConfig(cfg config.ModuleConfig) error
}

// ConfigRepository loads and stores the persisted configuration file.
type ConfigRepository interface {
	// Load reads the configuration file.
	Load(ctx context.Context) (config.FileConfig, error)

	// Save writes the module settings, keeping process-level keys intact.
	Save(ctx context.Context, cfg config.ModuleConfig) error
}
