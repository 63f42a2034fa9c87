// Package components declares the stock component kinds the demo stages and
// the streaming server work with. Application code is free to declare
// further kinds starting at KindUser.
package components

import "github.com/b99631944-eng/Bennett-lab/internal/core/ecs"

const (
	KindPosition ecs.Kind = iota
	KindVelocity
	KindMesh
	KindName

	// KindUser is the first kind value available to application components.
	KindUser
)

// KindString names the stock kinds for logs and wire payloads.
func KindString(k ecs.Kind) string {
	switch k {
	case KindPosition:
		return "Position"
	case KindVelocity:
		return "Velocity"
	case KindMesh:
		return "Mesh"
	case KindName:
		return "Name"
	default:
		return "User"
	}
}

// Owned records the owning entity through the attach/detach hooks. Embed it
// in a component to carry the back-reference without extra bookkeeping.
type Owned struct {
	owner ecs.EntityID
}

func (o *Owned) OnAttach(id ecs.EntityID) { o.owner = id }
func (o *Owned) OnDetach(ecs.EntityID)    { o.owner = 0 }

// Owner returns the entity the component is attached to, 0 when detached.
func (o *Owned) Owner() ecs.EntityID { return o.owner }

// Position locates an entity in world space.
type Position struct {
	Owned
	X, Y, Z float64
}

func (*Position) Kind() ecs.Kind { return KindPosition }

// Velocity is world-space displacement per second.
type Velocity struct {
	Owned
	X, Y, Z float64
}

func (*Velocity) Kind() ecs.Kind { return KindVelocity }

// Mesh binds an entity to a renderable resource by name. The core never
// interprets the resource; the render collaborator does.
type Mesh struct {
	Owned
	Resource string
	Visible  bool
}

func (*Mesh) Kind() ecs.Kind { return KindMesh }

// Name is a display label, distinct from the registry's debug name.
type Name struct {
	Owned
	Value string
}

func (*Name) Kind() ecs.Kind { return KindName }
