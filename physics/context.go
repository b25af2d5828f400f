package physics

import (
	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/tilemap"
)

// Context carries the resources one simulation step reads and writes.
type Context struct {
	World    *ecs.World
	Map      *tilemap.CollisionMap // nil when no level is loaded
	Commands *command.Queue
	Gravity  float64
	Tick     float64
}

// body is the pair of components the simulation needs for one entity.
type body struct {
	ent  ecs.Entity
	phys *component.PhysicsBody
	tr   *component.Transform
}

func lookup(w *ecs.World, e ecs.Entity) (body, bool) {
	phys, ok := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
	if !ok {
		return body{}, false
	}
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return body{}, false
	}
	return body{ent: e, phys: phys, tr: tr}, true
}
