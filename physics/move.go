package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/tilemap"
)

// Move displaces e by step. World-colliding bodies are traced against the
// collision map and slide along whatever they hit; everything else is
// translated directly.
func Move(ctx *Context, e ecs.Entity, step cp.Vector) {
	if ctx == nil {
		return
	}
	b, ok := lookup(ctx.World, e)
	if !ok {
		return
	}
	move(ctx, b, step)
}

func move(ctx *Context, b body, step cp.Vector) {
	if !b.phys.Mode.World || ctx.Map == nil {
		b.tr.Pos = b.tr.Pos.Add(step)
		return
	}

	size := b.tr.ScaledSize()
	t := ctx.Map.Trace(b.tr.Pos, step, size, b.tr.Angle)
	handleTraceResult(ctx, b, t)

	// Stopped short: spend the rest of the step sliding along the surface.
	if t.Length < 1 {
		slope := t.Normal.Perp()
		along := step.Dot(slope)
		if along != 0 {
			rest := slope.Mult(along * (1 - t.Length))
			t2 := ctx.Map.Trace(b.tr.Pos, rest, size, b.tr.Angle)
			handleTraceResult(ctx, b, t2)
		}
	}
}

func handleTraceResult(ctx *Context, b body, t tilemap.Trace) {
	b.tr.Pos = t.Pos
	if !t.Hit {
		return
	}

	hit := t
	ctx.Commands.CollideTile(b.ent, t.Normal, &hit)

	p := b.phys
	if p.Restitution > 0 {
		against := p.Vel.Dot(t.Normal)
		if math.Abs(against)*p.Restitution > common.MinBounceVelocity {
			p.Vel = p.Vel.Sub(t.Normal.Mult(against * 2)).Mult(p.Restitution)
			return
		}
	}

	if ctx.Gravity != 0 && t.Normal.Y < -p.MaxGroundNormal {
		p.OnGround = true

		// Bodies that should not slide down slopes get their vertical
		// velocity pinned to the slope.
		if t.Normal.Y < -p.MinSlideNormal {
			p.Vel.Y = p.Vel.X * t.Normal.X
		}
	}

	slope := t.Normal.Perp()
	p.Vel = slope.Mult(p.Vel.Dot(slope))
}
