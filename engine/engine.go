package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/config"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/geom"
	"github.com/milk9111/impact2d/physics"
	"github.com/milk9111/impact2d/tilemap"
)

// ErrNoHooks is returned when an entity has no hooks attached.
var ErrNoHooks = errors.New("engine: entity has no hooks")

// Engine drives the simulation one frame at a time.
type Engine struct {
	World     *ecs.World
	Scheduler *ecs.Scheduler

	Gravity   float64
	TimeScale float64
	MaxTick   float64
	Debug     bool

	// Observer, when set, sees every command addressed to a live entity
	// before it is applied.
	Observer func(cmd command.Command)

	collisionMap *tilemap.CollisionMap
	commands     command.Queue
	roster       *physics.CollisionSet

	sweepAxis   physics.SweepAxis
	pendingAxis *physics.SweepAxis

	tick  float64
	time  float64
	frame uint64
}

// New creates an engine from validated settings.
func New(cfg config.Engine) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	axis, _ := cfg.Axis()
	return &Engine{
		World:     ecs.NewWorld(),
		Scheduler: ecs.NewScheduler(),
		Gravity:   cfg.Gravity,
		TimeScale: cfg.TimeScale,
		MaxTick:   cfg.MaxTick,
		Debug:     cfg.Debug,
		roster:    physics.NewCollisionSet(),
		sweepAxis: axis,
	}, nil
}

// Apply takes over the tunables of a reloaded config. The sweep axis
// switches at the start of the next frame.
func (g *Engine) Apply(cfg config.Engine) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	axis, _ := cfg.Axis()
	g.Gravity = cfg.Gravity
	g.TimeScale = cfg.TimeScale
	g.MaxTick = cfg.MaxTick
	g.Debug = cfg.Debug
	g.SetSweepAxis(axis)
	return nil
}

// SetSweepAxis changes the broad phase axis between frames.
func (g *Engine) SetSweepAxis(axis physics.SweepAxis) {
	g.pendingAxis = &axis
}

func (g *Engine) SweepAxis() physics.SweepAxis {
	return g.sweepAxis
}

// SetCollisionMap replaces the static level geometry. nil disables world
// collisions.
func (g *Engine) SetCollisionMap(m *tilemap.CollisionMap) {
	g.collisionMap = m
}

func (g *Engine) CollisionMap() *tilemap.CollisionMap {
	return g.collisionMap
}

// Commands returns the queue hooks push their requests into.
func (g *Engine) Commands() *command.Queue {
	return &g.commands
}

// Roster returns the broad phase roster.
func (g *Engine) Roster() *physics.CollisionSet {
	return g.roster
}

// Tick returns the clamped, scaled delta of the current frame in seconds.
func (g *Engine) Tick() float64 {
	return g.tick
}

// Time returns the accumulated simulation time.
func (g *Engine) Time() float64 {
	return g.time
}

func (g *Engine) Frame() uint64 {
	return g.frame
}

// Spawn creates an entity with a transform, a physics body and optional
// hooks, and registers it with the broad phase.
func (g *Engine) Spawn(hooks Hooks, tr component.Transform, body component.PhysicsBody) (ecs.Entity, error) {
	ent := g.World.CreateEntity()
	tr.Angle = geom.NormalizeAngle(tr.Angle)
	body.Mode = body.Mode.Normalize()
	if err := ecs.Add(g.World, ent, component.TransformComponent.Kind(), &tr); err != nil {
		g.World.DestroyEntity(ent)
		return 0, fmt.Errorf("engine: spawn: %w", err)
	}
	if err := ecs.Add(g.World, ent, component.PhysicsBodyComponent.Kind(), &body); err != nil {
		g.World.DestroyEntity(ent)
		return 0, fmt.Errorf("engine: spawn: %w", err)
	}
	if hooks != nil {
		if err := ecs.Add(g.World, ent, hooksComponent.Kind(), &hooks); err != nil {
			g.World.DestroyEntity(ent)
			return 0, fmt.Errorf("engine: spawn: %w", err)
		}
	}
	g.roster.Add(ent)
	return ent, nil
}

// Despawn removes an entity from the roster and the store. Stale handles
// are ignored.
func (g *Engine) Despawn(ent ecs.Entity) bool {
	g.roster.Remove(ent)
	return g.World.DestroyEntity(ent)
}

// Hooks returns the hooks attached to ent.
func (g *Engine) Hooks(ent ecs.Entity) (Hooks, error) {
	h, ok := ecs.Get(g.World, ent, hooksComponent.Kind())
	if !ok || *h == nil {
		return nil, fmt.Errorf("engine: hooks for %s: %w", ent, ErrNoHooks)
	}
	return *h, nil
}

func (g *Engine) context() *physics.Context {
	return &physics.Context{
		World:    g.World,
		Map:      g.collisionMap,
		Commands: &g.commands,
		Gravity:  g.Gravity,
		Tick:     g.tick,
	}
}

// Update advances the simulation by one frame. realDelta is the wall time
// since the previous frame in seconds.
func (g *Engine) Update(realDelta float64) {
	if g.pendingAxis != nil {
		g.sweepAxis = *g.pendingAxis
		g.pendingAxis = nil
	}

	g.tick = common.Clamp(realDelta*g.TimeScale, 0, g.MaxTick)
	g.time += g.tick
	g.frame++

	g.Scheduler.Update(g.World)
	g.expireTTL()

	ctx := g.context()
	for _, ent := range g.World.Entities() {
		hooks, _ := g.Hooks(ent)
		if hooks != nil {
			hooks.Update(g, ent)
		}
		physics.Integrate(ctx, ent)
		if hooks != nil && g.World.IsAlive(ent) {
			hooks.PostUpdate(g, ent)
		}
	}

	physics.UpdateCollision(ctx, g.roster, g.sweepAxis)
	g.dispatch()

	if g.Debug {
		log.Printf("engine: frame=%d tick=%.4f entities=%d", g.frame, g.tick, g.World.Len())
	}
}
