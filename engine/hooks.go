package engine

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/tilemap"
)

// Hooks is the behavior shared by every entity of one kind. The engine calls
// Update and PostUpdate around physics each frame and the remaining methods
// while dispatching queued commands. Handles passed as other may already be
// dead.
type Hooks interface {
	Update(g *Engine, ent ecs.Entity)
	PostUpdate(g *Engine, ent ecs.Entity)
	Collide(g *Engine, ent, other ecs.Entity, normal cp.Vector, trace *tilemap.Trace)
	Touch(g *Engine, ent, other ecs.Entity)
	Settings(g *Engine, ent ecs.Entity, settings map[string]any)
	Kill(g *Engine, ent ecs.Entity)
	Damage(g *Engine, ent, other ecs.Entity, amount float64)
	Trigger(g *Engine, ent, other ecs.Entity)
	Message(g *Engine, ent ecs.Entity, payload any)
}

// BaseHooks implements Hooks with the default behavior. Embed it and
// override only what a kind needs.
type BaseHooks struct{}

func (BaseHooks) Update(*Engine, ecs.Entity)                                         {}
func (BaseHooks) PostUpdate(*Engine, ecs.Entity)                                     {}
func (BaseHooks) Collide(*Engine, ecs.Entity, ecs.Entity, cp.Vector, *tilemap.Trace) {}
func (BaseHooks) Touch(*Engine, ecs.Entity, ecs.Entity)                              {}
func (BaseHooks) Settings(*Engine, ecs.Entity, map[string]any)                       {}
func (BaseHooks) Kill(*Engine, ecs.Entity)                                           {}
func (BaseHooks) Trigger(*Engine, ecs.Entity, ecs.Entity)                            {}
func (BaseHooks) Message(*Engine, ecs.Entity, any)                                   {}

// Damage subtracts amount from the entity's health and queues a kill once
// it runs out. Entities without health ignore damage.
func (BaseHooks) Damage(g *Engine, ent, _ ecs.Entity, amount float64) {
	health, ok := ecs.Get(g.World, ent, component.HealthComponent.Kind())
	if !ok || health.Killed {
		return
	}
	health.Value -= amount
	if health.Value <= 0 {
		g.Commands().Kill(ent)
	}
}

var hooksComponent = component.NewComponent[Hooks]()
