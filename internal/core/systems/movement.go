// Package systems holds the stock systems shipped with the engine.
package systems

import (
	"github.com/b99631944-eng/Bennett-lab/internal/core/components"
	"github.com/b99631944-eng/Bennett-lab/internal/core/ecs"
)

// MovementPriority runs the integrator early so later systems observe
// this frame's positions.
const MovementPriority = 0

// Movement integrates Position by Velocity once per frame for every active
// entity carrying both.
type Movement struct {
	ecs.SystemBase
}

// NewMovement creates the integrator at MovementPriority.
func NewMovement() *Movement {
	return &Movement{SystemBase: ecs.NewSystemBase(MovementPriority)}
}

// Update applies Position += Velocity * delta.
func (m *Movement) Update(w *ecs.World, delta, _ float64) {
	for _, id := range w.Query(components.KindPosition, components.KindVelocity) {
		p, ok := w.GetComponent(id, components.KindPosition)
		if !ok {
			continue
		}
		v, ok := w.GetComponent(id, components.KindVelocity)
		if !ok {
			continue
		}
		pos := p.(*components.Position)
		vel := v.(*components.Velocity)
		pos.X += vel.X * delta
		pos.Y += vel.Y * delta
		pos.Z += vel.Z * delta
	}
}
