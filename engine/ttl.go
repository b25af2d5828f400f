package engine

import (
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
)

// expireTTL counts TTL components down by the frame tick and queues a kill
// for every entity whose time ran out.
func (g *Engine) expireTTL() {
	ecs.ForEach(g.World, component.TTLComponent.Kind(), func(ent ecs.Entity, ttl *component.TTL) {
		if ttl.Remaining <= 0 {
			return
		}
		ttl.Remaining -= g.tick
		if ttl.Remaining <= 0 {
			g.commands.Kill(ent)
		}
	})
}
