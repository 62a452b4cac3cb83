package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/ytcontrol/internal/domain"
	"github.com/bft-labs/ytcontrol/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// mockEmitter tracks module events for testing.
type mockEmitter struct {
	mu          sync.Mutex
	events      []stateChangeEvent
	projections []string
	actions     []actionEvent
}

type stateChangeEvent struct {
	previous Phase
	current  Phase
	reason   string
}

type actionEvent struct {
	action string
	err    error
}

func (m *mockEmitter) OnStateChange(previous, current Phase, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) OnProjection(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projections = append(m.projections, kind)
}

func (m *mockEmitter) OnAction(action string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, actionEvent{action, err})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func (m *mockEmitter) Projections() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.projections...)
}

func (m *mockEmitter) Actions() []actionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]actionEvent{}, m.actions...)
}

func TestNewLifecycle(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	if l == nil {
		t.Fatal("NewLifecycle returned nil")
	}
	if l.Phase() != PhaseUninitialized {
		t.Errorf("initial phase = %v, want PhaseUninitialized", l.Phase())
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseUninitialized, "Uninitialized"},
		{PhaseAuthorizing, "Authorizing"},
		{PhaseReady, "Ready"},
		{PhaseError, "Error"},
		{PhaseDestroyed, "Destroyed"},
		{Phase(99), "Unknown"},
	}

	for _, tt := range tests {
		got := tt.phase.String()
		if got != tt.want {
			t.Errorf("Phase(%d).String() = %s, want %s", tt.phase, got, tt.want)
		}
	}
}

func TestLifecycle_TransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
	}{
		{"uninitialized to authorizing", PhaseUninitialized, PhaseAuthorizing},
		{"uninitialized to destroyed", PhaseUninitialized, PhaseDestroyed},
		{"authorizing to ready", PhaseAuthorizing, PhaseReady},
		{"authorizing to error", PhaseAuthorizing, PhaseError},
		{"authorizing to destroyed", PhaseAuthorizing, PhaseDestroyed},
		{"ready to destroyed", PhaseReady, PhaseDestroyed},
		{"error to destroyed", PhaseError, PhaseDestroyed},
		{"error to authorizing", PhaseError, PhaseAuthorizing},
		{"destroyed to authorizing", PhaseDestroyed, PhaseAuthorizing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.phase = tt.from

			if err := l.TransitionTo(tt.to, "test"); err != nil {
				t.Errorf("TransitionTo() error = %v", err)
			}
			if l.Phase() != tt.to {
				t.Errorf("phase = %v after transition, want %v", l.Phase(), tt.to)
			}
		})
	}
}

func TestLifecycle_TransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Phase
		to   Phase
	}{
		{"uninitialized to ready", PhaseUninitialized, PhaseReady},
		{"uninitialized to error", PhaseUninitialized, PhaseError},
		{"authorizing to authorizing", PhaseAuthorizing, PhaseAuthorizing},
		{"ready to authorizing", PhaseReady, PhaseAuthorizing},
		{"ready to error", PhaseReady, PhaseError},
		{"error to ready", PhaseError, PhaseReady},
		{"destroyed to destroyed", PhaseDestroyed, PhaseDestroyed},
		{"destroyed to ready", PhaseDestroyed, PhaseReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.phase = tt.from

			err := l.TransitionTo(tt.to, "test")

			if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
			}
			// Phase should not change on invalid transition
			if l.Phase() != tt.from {
				t.Errorf("phase changed to %v on invalid transition, want %v", l.Phase(), tt.from)
			}
		})
	}
}

func TestLifecycle_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	l := NewLifecycle(&mockLogger{}, emitter)

	_ = l.TransitionTo(PhaseAuthorizing, "init")
	_ = l.TransitionTo(PhaseReady, "cache initialized")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].previous != PhaseUninitialized || events[0].current != PhaseAuthorizing {
		t.Errorf("event 0: got %v->%v, want Uninitialized->Authorizing", events[0].previous, events[0].current)
	}
	if events[1].previous != PhaseAuthorizing || events[1].current != PhaseReady {
		t.Errorf("event 1: got %v->%v, want Authorizing->Ready", events[1].previous, events[1].current)
	}
	if events[1].reason != "cache initialized" {
		t.Errorf("event 1 reason = %q", events[1].reason)
	}
}

func TestLifecycle_CanInit(t *testing.T) {
	tests := []struct {
		phase Phase
		want  bool
	}{
		{PhaseUninitialized, true},
		{PhaseAuthorizing, false},
		{PhaseReady, false},
		{PhaseError, true},
		{PhaseDestroyed, true},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			l := NewLifecycle(&mockLogger{}, nil)
			l.phase = tt.phase

			if got := l.CanInit(); got != tt.want {
				t.Errorf("CanInit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLifecycle_WaitWithTimeout_Success(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	l.AddWorker()

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.WorkerDone()
	}()

	err := l.WaitWithTimeout(time.Second)
	if err != nil {
		t.Errorf("WaitWithTimeout() = %v, want nil", err)
	}
}

func TestLifecycle_WaitWithTimeout_Timeout(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	l.AddWorker()
	// Never call WorkerDone

	err := l.WaitWithTimeout(10 * time.Millisecond)
	if err != domain.ErrShutdownTimeout {
		t.Errorf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}

	// Clean up
	l.WorkerDone()
	_ = l.WaitWithTimeout(time.Second)
}

func TestLifecycle_Concurrency(t *testing.T) {
	l := NewLifecycle(&mockLogger{}, nil)

	var wg sync.WaitGroup

	// Concurrent phase reads
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.Phase()
				_ = l.CanInit()
			}
		}()
	}

	// Concurrent transitions (some will fail, which is expected)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.TransitionTo(PhaseAuthorizing, "test")
			_ = l.TransitionTo(PhaseReady, "test")
		}()
	}

	wg.Wait()
}
