// Package surface provides an in-memory host that keeps the definitions and
// values the module projects, for serving over the HTTP API.
package surface

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/ytcontrol/internal/config"
	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

const saveTimeout = 5 * time.Second

// Status is the last status reported by the module.
type Status struct {
	Level   domain.StatusLevel `json:"-"`
	State   string             `json:"level"`
	Message string             `json:"message,omitempty"`
}

// Store implements ports.Host.
type Store struct {
	repo   ports.ConfigRepository
	logger ports.Logger

	mu            sync.RWMutex
	status        Status
	variableDefs  []domain.VariableDefinition
	values        map[string]string
	presets       []domain.PresetDefinition
	feedbackDefs  []domain.FeedbackDefinition
	actionDefs    []domain.ActionDefinition
	feedbackCheck uint64
	checkedTypes  []string
}

// Compile-time interface check.
var _ ports.Host = (*Store)(nil)

// NewStore creates a Store persisting configuration through repo.
// A nil repo disables persistence.
func NewStore(repo ports.ConfigRepository, logger ports.Logger) *Store {
	return &Store{
		repo:   repo,
		logger: logger,
		status: Status{Level: domain.StatusUnknown, State: domain.StatusUnknown.String()},
		values: make(map[string]string),
	}
}

// SetStatus records the module status.
func (s *Store) SetStatus(level domain.StatusLevel, message string) {
	s.mu.Lock()
	s.status = Status{Level: level, State: level.String(), Message: message}
	s.mu.Unlock()

	s.logger.Debug("status changed", ports.String("level", level.String()), ports.String("message", message))
}

// SetVariableDefinitions replaces the declared variables and drops the
// values of any variable no longer declared.
func (s *Store) SetVariableDefinitions(defs []domain.VariableDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variableDefs = defs

	declared := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		declared[d.Name] = struct{}{}
	}
	for name := range s.values {
		if _, ok := declared[name]; !ok {
			delete(s.values, name)
		}
	}
}

// SetVariableValues merges values into the current set.
func (s *Store) SetVariableValues(values []domain.VariableValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		s.values[v.Name] = v.Value
	}
}

// SetPresetDefinitions replaces the preset definitions.
func (s *Store) SetPresetDefinitions(presets []domain.PresetDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = presets
}

// SetFeedbackDefinitions replaces the feedback definitions.
func (s *Store) SetFeedbackDefinitions(defs []domain.FeedbackDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackDefs = defs
}

// SetActionDefinitions replaces the action definitions.
func (s *Store) SetActionDefinitions(defs []domain.ActionDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actionDefs = defs
}

// CheckFeedbacks counts re-evaluation requests; clients poll styles on demand.
func (s *Store) CheckFeedbacks(types ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedbackCheck++
	s.checkedTypes = append([]string(nil), types...)
}

// SaveConfig persists cfg through the configuration repository.
func (s *Store) SaveConfig(cfg config.ModuleConfig) error {
	if s.repo == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	return s.repo.Save(ctx, cfg)
}

// Status returns the last reported status.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Variables returns the current variable values ordered by name.
func (s *Store) Variables() []domain.VariableValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VariableValue, 0, len(s.values))
	for name, value := range s.values {
		out = append(out, domain.VariableValue{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Variable returns the value of one variable.
func (s *Store) Variable(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok
}

// VariableDefinitions returns the declared variables.
func (s *Store) VariableDefinitions() []domain.VariableDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.VariableDefinition(nil), s.variableDefs...)
}

// Presets returns the preset definitions.
func (s *Store) Presets() []domain.PresetDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.PresetDefinition(nil), s.presets...)
}

// FeedbackDefinitions returns the feedback definitions.
func (s *Store) FeedbackDefinitions() []domain.FeedbackDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FeedbackDefinition(nil), s.feedbackDefs...)
}

// ActionDefinitions returns the action definitions.
func (s *Store) ActionDefinitions() []domain.ActionDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ActionDefinition(nil), s.actionDefs...)
}

// FeedbackChecks returns how many re-evaluation requests were made and the
// types named by the latest one (nil for all).
func (s *Store) FeedbackChecks() (uint64, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedbackCheck, append([]string(nil), s.checkedTypes...)
}
