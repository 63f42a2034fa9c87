// Package stage implements the scene state machine: named stages with an
// init/update/destroy lifecycle, exactly one of which is current at a time.
//
// The manager is generic over the context handed to stage hooks, so the
// engine can pass its own context type without an import cycle.
package stage

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/b99631944-eng/Bennett-lab/internal/core/observability/log"
)

var ErrStageNotFound = errors.New("stage not found")

// Stage is a lifecycle-scoped unit of scene setup, per-frame behavior, and
// teardown. A stage that creates entities, components, or systems in OnInit
// owns them by convention and removes them in OnDestroy; the core does not
// enforce the ownership.
type Stage[C any] interface {
	OnInit(ctx C)
	OnUpdate(delta, elapsed float64, ctx C)
	OnDestroy(ctx C)
}

// Manager holds the registered stages and the current one. There is no
// stage stack: switching never preserves the outgoing stage, and re-entering
// a stage always runs its OnInit fresh.
type Manager[C any] struct {
	mu      sync.Mutex
	ctx     C
	logger  *log.Logger
	stages  map[string]Stage[C]
	current string
}

// NewManager creates a manager that passes ctx to every stage hook.
func NewManager[C any](ctx C, logger *log.Logger) *Manager[C] {
	return &Manager[C]{
		ctx:    ctx,
		logger: logger,
		stages: make(map[string]Stage[C]),
	}
}

// Register adds a stage under a name. Registering a name twice replaces the
// earlier stage without running any lifecycle hooks.
func (m *Manager[C]) Register(name string, s Stage[C]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages[name] = s
}

// SwitchTo makes the named stage current: the outgoing stage's OnDestroy
// runs first, then the incoming stage's OnInit. An unregistered name fails
// with ErrStageNotFound and leaves the current stage untouched.
func (m *Manager[C]) SwitchTo(name string) error {
	m.mu.Lock()
	next, ok := m.stages[name]
	if !ok {
		m.mu.Unlock()
		return ErrStageNotFound
	}
	outgoing := m.currentStageLocked()
	from := m.current
	m.current = name
	m.mu.Unlock()

	if outgoing != nil {
		outgoing.OnDestroy(m.ctx)
	}
	next.OnInit(m.ctx)

	m.logger.Debug("stage switched", zap.String("from", from), zap.String("to", name))
	return nil
}

// Update forwards the frame to the current stage. No-op when none is current.
func (m *Manager[C]) Update(delta, elapsed float64) {
	m.mu.Lock()
	s := m.currentStageLocked()
	m.mu.Unlock()

	if s != nil {
		s.OnUpdate(delta, elapsed, m.ctx)
	}
}

// Current returns the current stage and its name, or ok=false when no stage
// has been switched to yet.
func (m *Manager[C]) Current() (name string, s Stage[C], ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s = m.currentStageLocked()
	if s == nil {
		var zero Stage[C]
		return "", zero, false
	}
	return m.current, s, true
}

// Dispose destroys the current stage, if any, and clears the registry.
func (m *Manager[C]) Dispose() {
	m.mu.Lock()
	s := m.currentStageLocked()
	m.current = ""
	m.stages = make(map[string]Stage[C])
	m.mu.Unlock()

	if s != nil {
		s.OnDestroy(m.ctx)
	}
}

func (m *Manager[C]) currentStageLocked() Stage[C] {
	if m.current == "" {
		return nil
	}
	return m.stages[m.current]
}
