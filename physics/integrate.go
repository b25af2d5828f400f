package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
)

// Integrate advances the velocity of e by one tick and moves it by the
// average of its old and new velocity. Entities that do not move, or lack a
// body or transform, are left alone.
func Integrate(ctx *Context, e ecs.Entity) {
	if ctx == nil {
		return
	}
	b, ok := lookup(ctx.World, e)
	if !ok || !b.phys.Mode.Moves {
		return
	}

	p := b.phys
	dt := ctx.Tick
	before := p.Vel

	p.Vel.Y += ctx.Gravity * p.Gravity * dt
	fric := cp.Vector{
		X: math.Min(p.Friction.X*dt, 1),
		Y: math.Min(p.Friction.Y*dt, 1),
	}
	p.Vel = p.Vel.Add(p.Accel.Mult(dt).Sub(cp.Vector{X: p.Vel.X * fric.X, Y: p.Vel.Y * fric.Y}))

	step := before.Add(p.Vel).Mult(dt * 0.5)
	p.OnGround = false
	move(ctx, b, step)
}

// IntegrateAll integrates every entity carrying a physics body.
func IntegrateAll(ctx *Context) {
	if ctx == nil {
		return
	}
	var ents []ecs.Entity
	ecs.ForEach(ctx.World, component.PhysicsBodyComponent.Kind(), func(e ecs.Entity, _ *component.PhysicsBody) {
		ents = append(ents, e)
	})
	for _, e := range ents {
		Integrate(ctx, e)
	}
}
