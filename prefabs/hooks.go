package prefabs

import (
	"fmt"
	"log"

	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/engine"
)

// kinds maps the kind field of a spec to its behavior.
var kinds = map[string]func(EntitySpec) engine.Hooks{
	"actor":  func(EntitySpec) engine.Hooks { return ActorHooks{} },
	"pickup": func(s EntitySpec) engine.Hooks { return PickupHooks{Name: s.Name} },
	"hazard": func(s EntitySpec) engine.Hooks { return HazardHooks{Amount: s.Damage} },
}

// HooksFor returns the behavior of a spec's kind. Specs without a kind
// behave like actors.
func HooksFor(spec EntitySpec) engine.Hooks {
	if fn, ok := kinds[spec.Kind]; ok {
		return fn(spec)
	}
	return ActorHooks{}
}

// ActorHooks applies level props delivered as settings to the body.
type ActorHooks struct {
	engine.BaseHooks
}

func (ActorHooks) Settings(g *engine.Engine, ent ecs.Entity, settings map[string]any) {
	body, ok := ecs.Get(g.World, ent, component.PhysicsBodyComponent.Kind())
	if !ok {
		return
	}
	for key, raw := range settings {
		v, err := toFloat(raw)
		if err != nil {
			log.Printf("prefabs: %s setting %s: %v", ent, key, err)
			continue
		}
		switch key {
		case "vel_x":
			body.Vel.X = v
		case "vel_y":
			body.Vel.Y = v
		case "gravity":
			body.Gravity = v
		case "mass":
			body.Mass = v
		case "restitution":
			body.Restitution = v
		default:
			if g.Debug {
				log.Printf("prefabs: %s ignoring setting %s", ent, key)
			}
		}
	}
}

// PickupHooks removes the pickup once something it checks against touches
// it and tells the collector what it got.
type PickupHooks struct {
	ActorHooks
	Name string
}

func (h PickupHooks) Touch(g *engine.Engine, ent, other ecs.Entity) {
	g.Commands().Message(other, h.Name)
	g.Commands().Kill(ent)
}

// HazardHooks damages whatever touches it.
type HazardHooks struct {
	ActorHooks
	Amount float64
}

func (h HazardHooks) Touch(g *engine.Engine, ent, other ecs.Entity) {
	g.Commands().Damage(other, ent, h.Amount)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("not a number: %T", v)
}
