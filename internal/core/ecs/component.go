package ecs

// Kind is the discriminant identifying a component type. Kinds are small
// integers so a set of kinds packs into a fixed-width bitmask; at most 256
// distinct kinds may exist in a process.
type Kind uint8

// Component is implemented by every data record stored in the world.
// At most one component of a given kind is attached to an entity at a time.
type Component interface {
	Kind() Kind
}

// Attacher is an optional capability: components implementing it are told
// which entity they were attached to.
type Attacher interface {
	OnAttach(EntityID)
}

// Detacher is an optional capability: components implementing it are told
// when they are removed from their entity, including removal caused by
// entity destruction and world teardown.
type Detacher interface {
	OnDetach(EntityID)
}

func attach(c Component, id EntityID) {
	if a, ok := c.(Attacher); ok {
		a.OnAttach(id)
	}
}

func detach(c Component, id EntityID) {
	if d, ok := c.(Detacher); ok {
		d.OnDetach(id)
	}
}
