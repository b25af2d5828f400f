package engine

import (
	"log"

	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
)

// maxDispatchRounds bounds how often commands queued during dispatch are
// drained again within the same frame.
const maxDispatchRounds = 8

func (g *Engine) dispatch() {
	for round := 0; g.commands.Len() > 0; round++ {
		if round == maxDispatchRounds {
			log.Printf("engine: frame=%d %d commands deferred to next frame", g.frame, g.commands.Len())
			return
		}
		for _, cmd := range g.commands.Take() {
			g.apply(cmd)
		}
	}
}

func (g *Engine) apply(cmd command.Command) {
	if !g.World.IsAlive(cmd.Ent) {
		if g.Debug {
			log.Printf("engine: drop %s for dead entity", cmd)
		}
		return
	}
	if g.Observer != nil {
		g.Observer(cmd)
	}

	hooks, err := g.Hooks(cmd.Ent)
	if err != nil {
		if g.Debug {
			log.Printf("engine: %s: %v, using defaults", cmd, err)
		}
		hooks = BaseHooks{}
	}

	switch cmd.Kind {
	case command.Collide:
		hooks.Collide(g, cmd.Ent, cmd.Other, cmd.Normal, cmd.Trace)
	case command.Touch:
		hooks.Touch(g, cmd.Ent, cmd.Other)
	case command.Setting:
		hooks.Settings(g, cmd.Ent, cmd.Settings)
	case command.Damage:
		hooks.Damage(g, cmd.Ent, cmd.Other, cmd.Amount)
	case command.Trigger:
		hooks.Trigger(g, cmd.Ent, cmd.Other)
	case command.Message:
		hooks.Message(g, cmd.Ent, cmd.Payload)
	case command.Kill:
		g.kill(hooks, cmd.Ent)
	default:
		log.Printf("engine: unknown command %s", cmd)
	}
}

func (g *Engine) kill(hooks Hooks, ent ecs.Entity) {
	if health, ok := ecs.Get(g.World, ent, component.HealthComponent.Kind()); ok {
		health.Killed = true
	}
	hooks.Kill(g, ent)
	g.Despawn(ent)
}
