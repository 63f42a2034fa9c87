package main

import (
	"fmt"
	"math"

	"github.com/b99631944-eng/Bennett-lab/internal/core/components"
	"github.com/b99631944-eng/Bennett-lab/internal/core/ecs"
	"github.com/b99631944-eng/Bennett-lab/internal/core/engine"
	"github.com/b99631944-eng/Bennett-lab/internal/core/systems"
)

const (
	orbitRadius   = 10.0
	angularSpeed  = 0.5 // radians per second
	steerPriority = -10
)

// steerSystem keeps every moving entity on a circular orbit around the
// origin by re-aiming its velocity tangentially each frame. It runs before
// the movement integrator.
type steerSystem struct {
	ecs.SystemBase
}

func newSteerSystem() *steerSystem {
	return &steerSystem{SystemBase: ecs.NewSystemBase(steerPriority)}
}

func (s *steerSystem) Update(w *ecs.World, _, _ float64) {
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
		vel.X = -pos.Y * angularSpeed
		vel.Y = pos.X * angularSpeed
		vel.Z = 0
	}
}

// orbitStage populates the world with a ring of meshes circling the origin.
// Everything it creates in OnInit it removes in OnDestroy.
type orbitStage struct {
	count    int
	entities []ecs.EntityID
	steer    *steerSystem
	movement *systems.Movement
}

func newOrbitStage(count int) *orbitStage {
	return &orbitStage{count: count}
}

func (o *orbitStage) OnInit(ctx *engine.Context) {
	o.steer = newSteerSystem()
	o.movement = systems.NewMovement()
	ctx.World.AddSystem(o.steer)
	ctx.World.AddSystem(o.movement)

	o.entities = make([]ecs.EntityID, 0, o.count)
	for i := 0; i < o.count; i++ {
		angle := 2 * math.Pi * float64(i) / float64(o.count)
		name := fmt.Sprintf("orbiter-%d", i)
		id := ctx.World.CreateEntity(name)
		_ = ctx.World.AddComponent(id, &components.Position{
			X: orbitRadius * math.Cos(angle),
			Y: orbitRadius * math.Sin(angle),
		})
		_ = ctx.World.AddComponent(id, &components.Velocity{})
		_ = ctx.World.AddComponent(id, &components.Mesh{Resource: "sphere", Visible: true})
		o.entities = append(o.entities, id)
	}
}

func (o *orbitStage) OnUpdate(_, _ float64, _ *engine.Context) {
	// Per-frame behavior lives in the steer and movement systems.
}

func (o *orbitStage) OnDestroy(ctx *engine.Context) {
	for _, id := range o.entities {
		ctx.World.RemoveEntity(id)
	}
	o.entities = nil
	ctx.World.RemoveSystem(o.movement)
	ctx.World.RemoveSystem(o.steer)
}
