package prefabs

import (
	"fmt"
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/engine"
	"github.com/milk9111/impact2d/levels"
	"github.com/milk9111/impact2d/tilemap"
)

// TintComponent holds the debug color of an entity built from a spec.
var TintComponent = component.NewComponent[color.NRGBA]()

// Build spawns an entity described by spec centered on pos.
func Build(g *engine.Engine, spec EntitySpec, pos cp.Vector) (ecs.Entity, error) {
	body, err := spec.Body()
	if err != nil {
		return 0, err
	}
	ent, err := g.Spawn(HooksFor(spec), spec.NewTransform(pos), body)
	if err != nil {
		return 0, fmt.Errorf("prefabs: build %s: %w", spec.Name, err)
	}

	if spec.Health != nil {
		health := component.NewHealth(spec.Health.Max)
		if err := ecs.Add(g.World, ent, component.HealthComponent.Kind(), &health); err != nil {
			g.Despawn(ent)
			return 0, fmt.Errorf("prefabs: build %s: %w", spec.Name, err)
		}
	}
	if spec.TTL > 0 {
		ttl := component.TTL{Remaining: spec.TTL}
		if err := ecs.Add(g.World, ent, component.TTLComponent.Kind(), &ttl); err != nil {
			g.Despawn(ent)
			return 0, fmt.Errorf("prefabs: build %s: %w", spec.Name, err)
		}
	}
	if spec.Color != nil {
		tint := color.NRGBAModel.Convert(spec.Color.Color).(color.NRGBA)
		if err := ecs.Add(g.World, ent, TintComponent.Kind(), &tint); err != nil {
			g.Despawn(ent)
			return 0, fmt.Errorf("prefabs: build %s: %w", spec.Name, err)
		}
	}
	return ent, nil
}

// LoadRule compiles a tile collision rule script.
func LoadRule(name string) (tilemap.CollisionRule, error) {
	src, err := LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load rule %s: %w", name, err)
	}
	rule, err := tilemap.NewScriptRule(src)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load rule %s: %w", name, err)
	}
	return rule, nil
}

// Populate attaches the level's collision map to the engine and spawns
// every entity it places. Entity props are queued as settings.
func Populate(g *engine.Engine, lvl *levels.Level, rule tilemap.CollisionRule) ([]ecs.Entity, error) {
	m, err := lvl.CollisionMap(rule)
	if err != nil {
		return nil, err
	}
	g.SetCollisionMap(m)

	specs := make(map[string]EntitySpec)
	ents := make([]ecs.Entity, 0, len(lvl.Entities))
	for _, placed := range lvl.Entities {
		spec, ok := specs[placed.Type]
		if !ok {
			spec, err = LoadEntitySpec(placed.Type)
			if err != nil {
				return ents, err
			}
			specs[placed.Type] = spec
		}
		ent, err := Build(g, spec, cp.Vector{X: placed.X, Y: placed.Y})
		if err != nil {
			return ents, err
		}
		if len(placed.Props) > 0 {
			g.Commands().Setting(ent, placed.Props)
		}
		ents = append(ents, ent)
	}
	return ents, nil
}

// Tint returns the debug color of ent, if it has one.
func Tint(w *ecs.World, ent ecs.Entity) (color.NRGBA, bool) {
	c, ok := ecs.Get(w, ent, TintComponent.Kind())
	if !ok {
		return color.NRGBA{}, false
	}
	return *c, true
}
