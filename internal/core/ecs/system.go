package ecs

// System is a unit of per-frame logic bound to the world. Systems own no
// entities or components; they read and write through the world facade.
type System interface {
	// Update runs one frame of the system's logic. delta and elapsed are in
	// seconds, matching the clock callback.
	Update(w *World, delta, elapsed float64)

	// Priority orders execution within a frame. Lower values run first;
	// systems with equal priority run in insertion order.
	Priority() int
}

// Initializer is an optional capability: systems implementing it are
// initialized once when added to the world.
type Initializer interface {
	Init(w *World)
}

// Finalizer is an optional capability: systems implementing it are torn down
// when removed from the world or when the world is cleared.
type Finalizer interface {
	Destroy(w *World)
}

// enabler is satisfied by systems that can be toggled without removal.
// Systems without it are always considered enabled.
type enabler interface {
	Enabled() bool
}

// SystemBase carries the priority and enabled flag common to most systems.
// Embed it in a system struct to get both for free.
type SystemBase struct {
	priority int
	disabled bool
}

// NewSystemBase returns a base with the given priority, enabled.
func NewSystemBase(priority int) SystemBase {
	return SystemBase{priority: priority}
}

// Priority implements System ordering.
func (b *SystemBase) Priority() int { return b.priority }

// Enabled reports whether the system should run this frame.
func (b *SystemBase) Enabled() bool { return !b.disabled }

// SetEnabled toggles the system without removing it. A disabled system is
// skipped entirely: no hooks fire until it is re-enabled.
func (b *SystemBase) SetEnabled(enabled bool) { b.disabled = !enabled }

func systemEnabled(s System) bool {
	if e, ok := s.(enabler); ok {
		return e.Enabled()
	}
	return true
}
