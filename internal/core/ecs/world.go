package ecs

import (
	"sort"
	"sync"

	"github.com/b99631944-eng/Bennett-lab/pkg/generic"
)

// World is the aggregate root of the entity-component-system: it owns the
// entity registry, the component store, the system list, and the query cache.
// Component lifetime is owned exclusively by the world; systems and stages
// reference it but never its internals.
//
// All map-level state is guarded by an RWMutex so host goroutines (for
// example the state-streaming server) can read while the clock drives frames.
// Mutation only ever happens on the frame goroutine; RunSafe serializes whole
// read transactions against in-progress frames.
type World struct {
	mu      sync.RWMutex
	frameMu sync.Mutex

	registry   *registry
	components map[EntityID]map[Kind]Component
	masks      map[EntityID]kindMask
	systems    []System
	cache      map[kindMask][]EntityID
}

// snapshots pools the per-frame copy of the system list.
var snapshots = generic.NewPool(func() []System { return make([]System, 0, 16) })

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		registry:   newRegistry(),
		components: make(map[EntityID]map[Kind]Component),
		masks:      make(map[EntityID]kindMask),
		cache:      make(map[kindMask][]EntityID),
	}
}

// CreateEntity mints a new entity with a debug name and registers an empty
// component map for it. The returned id is never reused, even after removal.
func (w *World) CreateEntity(name string) EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.registry.create(name)
	w.components[id] = make(map[Kind]Component)
	w.masks[id] = kindMask{}
	w.invalidateLocked()
	return id
}

// AddEntity (re)registers an empty component map for an already-issued id.
// Calling it for an id that already carries components drops them without
// detach calls; the data-loss risk is the caller's.
func (w *World) AddEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.registry.has(id) {
		return
	}
	w.components[id] = make(map[Kind]Component)
	w.masks[id] = kindMask{}
	w.invalidateLocked()
}

// RemoveEntity detaches every component the entity carries, then deletes the
// entity and its component map. Unknown ids are a no-op.
func (w *World) RemoveEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	store, ok := w.components[id]
	if !ok {
		return
	}
	for _, c := range store {
		detach(c, id)
	}
	delete(w.components, id)
	delete(w.masks, id)
	w.registry.remove(id)
	w.invalidateLocked()
}

// ActivateEntity makes the entity visible to queries again.
func (w *World) ActivateEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.setActive(id, true)
	w.invalidateLocked()
}

// DeactivateEntity hides the entity from queries without touching its data.
func (w *World) DeactivateEntity(id EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registry.setActive(id, false)
	w.invalidateLocked()
}

// EntityActive reports whether the entity exists and is active.
func (w *World) EntityActive(id EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.isActive(id)
}

// EntityName returns the debug name given at creation.
func (w *World) EntityName(id EntityID) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.name(id)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.registry.len()
}

// AddComponent attaches a component to the entity, keyed by its kind.
// It returns ErrEntityNotFound if the id was never registered or was removed.
// An existing component of the same kind is detached first, then the new one
// is stored and attached; the component's kind is immutable once stored.
func (w *World) AddComponent(id EntityID, c Component) error {
	if c == nil {
		return ErrNilComponent
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	store, ok := w.components[id]
	if !ok {
		return ErrEntityNotFound
	}

	k := c.Kind()
	if old, exists := store[k]; exists {
		detach(old, id)
	}
	store[k] = c
	m := w.masks[id]
	m.set(k)
	w.masks[id] = m

	attach(c, id)
	w.invalidateLocked()
	return nil
}

// RemoveComponent detaches and deletes the entity's component of the given
// kind. Missing entity or component is a no-op: absent is the desired state.
func (w *World) RemoveComponent(id EntityID, k Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	store, ok := w.components[id]
	if !ok {
		return
	}
	c, exists := store[k]
	if !exists {
		return
	}
	detach(c, id)
	delete(store, k)
	m := w.masks[id]
	m.unset(k)
	w.masks[id] = m
	w.invalidateLocked()
}

// GetComponent returns the entity's component of the given kind, if any.
func (w *World) GetComponent(id EntityID, k Kind) (Component, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	store, ok := w.components[id]
	if !ok {
		return nil, false
	}
	c, exists := store[k]
	return c, exists
}

// HasComponent reports whether the entity carries a component of the kind.
func (w *World) HasComponent(id EntityID, k Kind) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	store, ok := w.components[id]
	if !ok {
		return false
	}
	_, exists := store[k]
	return exists
}

// AddSystem appends the system and re-sorts the list by ascending priority,
// preserving insertion order for equal priorities. The system's Init hook,
// if present, runs after insertion.
func (w *World) AddSystem(s System) {
	w.mu.Lock()
	w.systems = append(w.systems, s)
	sort.SliceStable(w.systems, func(i, j int) bool {
		return w.systems[i].Priority() < w.systems[j].Priority()
	})
	w.mu.Unlock()

	if init, ok := s.(Initializer); ok {
		init.Init(w)
	}
}

// RemoveSystem runs the system's Destroy hook, if present, and removes it
// from the schedule. Removing a system that was never added is a no-op.
func (w *World) RemoveSystem(s System) {
	w.mu.Lock()
	idx := -1
	for i, have := range w.systems {
		if have == s {
			idx = i
			break
		}
	}
	if idx < 0 {
		w.mu.Unlock()
		return
	}
	w.systems = append(w.systems[:idx], w.systems[idx+1:]...)
	w.mu.Unlock()

	if fin, ok := s.(Finalizer); ok {
		fin.Destroy(w)
	}
}

// EnableSystem re-enables a scheduled system. Systems that cannot be toggled
// (no SetEnabled) are left alone.
func (w *World) EnableSystem(s System) { setSystemEnabled(s, true) }

// DisableSystem keeps the system in the schedule but skips it every frame
// until re-enabled. No hooks fire on the transition.
func (w *World) DisableSystem(s System) { setSystemEnabled(s, false) }

func setSystemEnabled(s System, enabled bool) {
	if t, ok := s.(interface{ SetEnabled(bool) }); ok {
		t.SetEnabled(enabled)
	}
}

// Systems returns the current schedule in execution order.
func (w *World) Systems() []System {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]System, len(w.systems))
	copy(out, w.systems)
	return out
}

// Update runs one frame: every enabled system, in ascending-priority order.
// Systems iterate over a snapshot of the schedule taken at frame start, so a
// system may add or remove entities, components, and even other systems
// mid-frame without corrupting the iteration; such mutations are visible to
// the systems that run after it in the same frame.
func (w *World) Update(delta, elapsed float64) {
	w.frameMu.Lock()
	defer w.frameMu.Unlock()

	snap := snapshots.Get()
	w.mu.RLock()
	snap = append(snap[:0], w.systems...)
	w.mu.RUnlock()

	for _, s := range snap {
		if !systemEnabled(s) {
			continue
		}
		s.Update(w, delta, elapsed)
	}

	snapshots.Put(snap[:0])
}

// RunSafe runs fn serialized against frame updates. Host goroutines use it
// to read component data without racing the systems of an in-flight frame.
func (w *World) RunSafe(fn func()) {
	w.frameMu.Lock()
	defer w.frameMu.Unlock()
	fn()
}

// Clear tears the world down: every system's Destroy hook runs and the
// schedule empties, then every component detaches and the store empties,
// then the registry and query cache empty. Detach hooks therefore always run
// after systems have stopped.
func (w *World) Clear() {
	w.mu.Lock()
	systems := w.systems
	w.systems = nil
	w.mu.Unlock()

	for _, s := range systems {
		if fin, ok := s.(Finalizer); ok {
			fin.Destroy(w)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for id, store := range w.components {
		for _, c := range store {
			detach(c, id)
		}
	}
	w.components = make(map[EntityID]map[Kind]Component)
	w.masks = make(map[EntityID]kindMask)
	w.registry.clear()
	w.cache = make(map[kindMask][]EntityID)
}

// invalidateLocked drops every cached query result. Invalidation is
// wholesale rather than incremental: structural mutations are cheap and the
// first query after a mutation recomputes lazily.
func (w *World) invalidateLocked() {
	if len(w.cache) == 0 {
		return
	}
	w.cache = make(map[kindMask][]EntityID)
}
