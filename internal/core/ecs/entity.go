package ecs

// EntityID uniquely identifies an entity. IDs start at 1 and are never
// reused within a process lifetime; 0 is never a valid entity.
type EntityID uint64

// entityRecord is the registry's bookkeeping for one entity. Entities own no
// component data themselves; they are keys into the world's component store.
type entityRecord struct {
	name   string
	active bool
}

// registry issues entity identities and tracks the active flag and debug
// name of every live entity.
type registry struct {
	nextID  EntityID
	records map[EntityID]*entityRecord
}

func newRegistry() *registry {
	return &registry{
		nextID:  1,
		records: make(map[EntityID]*entityRecord),
	}
}

// create mints the next unused id. New entities default to active.
func (r *registry) create(name string) EntityID {
	id := r.nextID
	r.nextID++
	r.records[id] = &entityRecord{name: name, active: true}
	return id
}

func (r *registry) remove(id EntityID) {
	delete(r.records, id)
}

func (r *registry) has(id EntityID) bool {
	_, ok := r.records[id]
	return ok
}

func (r *registry) isActive(id EntityID) bool {
	rec, ok := r.records[id]
	return ok && rec.active
}

func (r *registry) setActive(id EntityID, active bool) {
	if rec, ok := r.records[id]; ok {
		rec.active = active
	}
}

func (r *registry) name(id EntityID) (string, bool) {
	rec, ok := r.records[id]
	if !ok {
		return "", false
	}
	return rec.name, true
}

func (r *registry) len() int {
	return len(r.records)
}

// clear empties the registry. The id counter is not rewound, so ids issued
// after a clear remain distinct from everything issued before it.
func (r *registry) clear() {
	r.records = make(map[EntityID]*entityRecord)
}
