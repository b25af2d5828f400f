package physics

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
)

// ResolveCollision pushes a and b apart by overlap, which points from a
// toward b. The larger axis is resolved first. Pairs with a missing body or
// transform are skipped.
func ResolveCollision(ctx *Context, a, b ecs.Entity, overlap cp.Vector) {
	if ctx == nil {
		return
	}
	pa, pb := ecs.GetPair(ctx.World, component.PhysicsBodyComponent.Kind(), a, b)
	ta, tb := ecs.GetPair(ctx.World, component.TransformComponent.Kind(), a, b)
	if pa == nil || pb == nil || ta == nil || tb == nil {
		return
	}
	ba := body{ent: a, phys: pa, tr: ta}
	bb := body{ent: b, phys: pb, tr: tb}
	aMove, bMove := MoveShares(pa, pb)

	resolveX := func() {
		switch {
		case overlap.X > 0:
			separateX(ctx, ba, bb, aMove, bMove, overlap.X)
			ctx.Commands.CollideEntity(a, b, cp.Vector{X: -1})
			ctx.Commands.CollideEntity(b, a, cp.Vector{X: 1})
		case overlap.X < 0:
			separateX(ctx, bb, ba, bMove, aMove, -overlap.X)
			ctx.Commands.CollideEntity(a, b, cp.Vector{X: 1})
			ctx.Commands.CollideEntity(b, a, cp.Vector{X: -1})
		}
	}
	resolveY := func() {
		switch {
		case overlap.Y > 0:
			separateY(ctx, ba, bb, aMove, bMove, overlap.Y)
			ctx.Commands.CollideEntity(a, b, cp.Vector{Y: -1})
			ctx.Commands.CollideEntity(b, a, cp.Vector{Y: 1})
		case overlap.Y < 0:
			separateY(ctx, bb, ba, bMove, aMove, -overlap.Y)
			ctx.Commands.CollideEntity(a, b, cp.Vector{Y: 1})
			ctx.Commands.CollideEntity(b, a, cp.Vector{Y: -1})
		}
	}

	if math.Abs(overlap.X) > math.Abs(overlap.Y) {
		resolveX()
		resolveY()
	} else {
		resolveY()
		resolveX()
	}
}

// MoveShares returns the fraction of the correction each side takes. Lite
// bodies always yield and fixed bodies never do; otherwise the lighter body
// moves further.
func MoveShares(a, b *component.PhysicsBody) (aMove, bMove float64) {
	switch {
	case a.Mode.Level == component.LevelLite || b.Mode.Level == component.LevelFixed:
		return 1, 0
	case a.Mode.Level == component.LevelFixed || b.Mode.Level == component.LevelLite:
		return 0, 1
	}
	total := a.Mass + b.Mass
	if total <= 0 {
		return 0.5, 0.5
	}
	return b.Mass / total, a.Mass / total
}

func separateX(ctx *Context, left, right body, leftMove, rightMove, overlap float64) {
	lp, rp := left.phys, right.phys
	impact := lp.Vel.X - rp.Vel.X

	if leftMove > 0 {
		lp.Vel.X = rp.Vel.X*leftMove + lp.Vel.X*rightMove
		if bounce := impact * lp.Restitution; bounce > common.MinBounceVelocity {
			lp.Vel.X -= bounce
		}
		move(ctx, left, cp.Vector{X: -overlap * leftMove})
	}

	if rightMove > 0 {
		rp.Vel.X = lp.Vel.X*rightMove + rp.Vel.X*leftMove
		if bounce := impact * rp.Restitution; bounce > common.MinBounceVelocity {
			rp.Vel.X += bounce
		}
		move(ctx, right, cp.Vector{X: overlap * rightMove})
	}
}

func separateY(ctx *Context, top, bottom body, topMove, bottomMove, overlap float64) {
	tp, bp := top.phys, bottom.phys

	// a body resting on the ground does not get pushed into it
	if bp.OnGround && topMove > 0 {
		topMove, bottomMove = 1, 0
	}

	impact := tp.Vel.Y - bp.Vel.Y
	topVelY := tp.Vel.Y

	if topMove > 0 {
		tp.Vel.Y = tp.Vel.Y*bottomMove + bp.Vel.Y*topMove
		var drift float64
		if bounce := impact * tp.Restitution; bounce > common.MinBounceVelocity {
			tp.Vel.Y -= bounce
		} else {
			tp.OnGround = true
			drift = bp.Vel.X * ctx.Tick
		}
		move(ctx, top, cp.Vector{X: drift, Y: -overlap * topMove})
	}

	if bottomMove > 0 {
		bp.Vel.Y = bp.Vel.Y*topMove + topVelY*bottomMove
		if bounce := impact * bp.Restitution; bounce > common.MinBounceVelocity {
			bp.Vel.Y += bounce
		}
		move(ctx, bottom, cp.Vector{Y: overlap * bottomMove})
	}
}
