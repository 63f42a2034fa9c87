package ecs

import "sort"

// Query returns the ids of every active entity carrying all of the listed
// component kinds, sorted ascending. Argument order and duplicate kinds do
// not affect the result or the cache key. Querying with no kinds returns nil.
//
// Results are cached per kind-set and the whole cache is dropped on any
// structural mutation, so a query never observes stale membership. Callers
// must not mutate the returned slice or retain it across mutations.
func (w *World) Query(kinds ...Kind) []EntityID {
	if len(kinds) == 0 {
		return nil
	}
	key := maskOf(kinds)

	w.mu.RLock()
	if cached, ok := w.cache[key]; ok {
		w.mu.RUnlock()
		return cached
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()

	// Re-check: another reader may have filled the entry between locks.
	if cached, ok := w.cache[key]; ok {
		return cached
	}

	result := make([]EntityID, 0)
	for id, m := range w.masks {
		if !m.contains(key) {
			continue
		}
		if !w.registry.isActive(id) {
			continue
		}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	w.cache[key] = result
	return result
}
