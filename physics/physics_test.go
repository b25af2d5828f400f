package physics

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/tilemap"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecNear(a, b cp.Vector, tol float64) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol)
}

func newContext(m *tilemap.CollisionMap) *Context {
	return &Context{
		World:    ecs.NewWorld(),
		Map:      m,
		Commands: &command.Queue{},
		Gravity:  240,
		Tick:     0.1,
	}
}

func spawn(t *testing.T, w *ecs.World, pos, size cp.Vector, mode component.PhysicsMode, setup ...func(*component.PhysicsBody)) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	tr := component.NewTransform(pos, size)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &tr); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	body := component.NewPhysicsBody(mode)
	for _, fn := range setup {
		fn(&body)
	}
	if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &body); err != nil {
		t.Fatalf("add body: %v", err)
	}
	return e
}

func bodyOf(t *testing.T, w *ecs.World, e ecs.Entity) (*component.PhysicsBody, *component.Transform) {
	t.Helper()
	b, ok := lookup(w, e)
	if !ok {
		t.Fatalf("entity %s has no body", e)
	}
	return b.phys, b.tr
}

func floorMap(t *testing.T) *tilemap.CollisionMap {
	t.Helper()
	data := make([]uint16, 10*10)
	for x := 0; x < 10; x++ {
		data[8*10+x] = 1
	}
	for y := 0; y < 10; y++ {
		data[y*10+5] = 1
	}
	m, err := tilemap.NewCollisionMap("floor", image.Pt(10, 10), 16, data)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestIntegrate(t *testing.T) {
	cases := []struct {
		name     string
		mode     component.PhysicsMode
		vel      cp.Vector
		friction cp.Vector
		gravity  float64
		wantVel  cp.Vector
		wantPos  cp.Vector
	}{
		{
			name:    "gravity_trapezoid",
			mode:    component.ModeMove,
			vel:     cp.Vector{X: 10},
			gravity: 1,
			wantVel: cp.Vector{X: 10, Y: 24},
			wantPos: cp.Vector{X: 1, Y: 1.2},
		},
		{
			name:     "friction",
			mode:     component.ModeMove,
			vel:      cp.Vector{X: 10},
			friction: cp.Vector{X: 5},
			wantVel:  cp.Vector{X: 5},
			wantPos:  cp.Vector{X: 0.75},
		},
		{
			name:     "friction_clamped",
			mode:     component.ModeMove,
			vel:      cp.Vector{X: 10},
			friction: cp.Vector{X: 50},
			wantVel:  cp.Vector{},
			wantPos:  cp.Vector{X: 0.5},
		},
		{
			name:    "static_untouched",
			mode:    component.ModeNone,
			vel:     cp.Vector{X: 10},
			gravity: 1,
			wantVel: cp.Vector{X: 10},
			wantPos: cp.Vector{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newContext(nil)
			e := spawn(t, ctx.World, cp.Vector{}, cp.Vector{X: 4, Y: 4}, tc.mode, func(p *component.PhysicsBody) {
				p.Vel = tc.vel
				p.Friction = tc.friction
				p.Gravity = tc.gravity
				p.OnGround = true
			})
			Integrate(ctx, e)
			p, tr := bodyOf(t, ctx.World, e)
			if !vecNear(p.Vel, tc.wantVel, eps) {
				t.Fatalf("vel %v want %v", p.Vel, tc.wantVel)
			}
			if !vecNear(tr.Pos, tc.wantPos, eps) {
				t.Fatalf("pos %v want %v", tr.Pos, tc.wantPos)
			}
			if tc.mode.Moves && p.OnGround {
				t.Fatalf("on ground must reset before moving")
			}
		})
	}
}

func TestIntegrateLandsOnFloor(t *testing.T) {
	ctx := newContext(floorMap(t))
	e := spawn(t, ctx.World, cp.Vector{X: 40, Y: 122}, cp.Vector{X: 8, Y: 8}, component.ModeActive, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{Y: 100}
	})

	IntegrateAll(ctx)

	p, tr := bodyOf(t, ctx.World, e)
	if !p.OnGround {
		t.Fatalf("expected body to be on ground")
	}
	if !vecNear(tr.Pos, cp.Vector{X: 40, Y: 124}, eps) {
		t.Fatalf("pos %v want flush with floor", tr.Pos)
	}
	if p.Vel != (cp.Vector{}) {
		t.Fatalf("vertical velocity must be cancelled, got %v", p.Vel)
	}
	cmds := ctx.Commands.Take()
	if len(cmds) != 1 || cmds[0].Kind != command.Collide || cmds[0].Trace == nil || cmds[0].Normal != (cp.Vector{Y: -1}) {
		t.Fatalf("expected one tile collide command, got %+v", cmds)
	}
}

func TestRotatedBodySlidesOnFloor(t *testing.T) {
	data := make([]uint16, 20*10)
	for x := 0; x < 20; x++ {
		data[8*20+x] = 1
	}
	m, err := tilemap.NewCollisionMap("wide", image.Pt(20, 10), 16, data)
	if err != nil {
		t.Fatal(err)
	}

	lowest := func(tr *component.Transform) float64 {
		low := math.Inf(-1)
		for _, v := range tr.Shape().Vertices() {
			low = math.Max(low, v.Y)
		}
		return low
	}

	cases := []struct {
		name  string
		angle float64
	}{
		{"30_degrees", math.Pi / 6},
		{"60_degrees", math.Pi / 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := newContext(m)
			e := spawn(t, ctx.World, cp.Vector{X: 40, Y: 100}, cp.Vector{X: 20, Y: 10}, component.ModePassive, func(p *component.PhysicsBody) {
				p.Vel = cp.Vector{X: 20}
			})
			p, tr := bodyOf(t, ctx.World, e)
			tr.Angle = tc.angle

			landed := false
			for frame := 0; frame < 40; frame++ {
				IntegrateAll(ctx)
				if low := lowest(tr); low > 128+1e-9 {
					t.Fatalf("frame %d: sank %v into the floor", frame, low-128)
				}
				for _, cmd := range ctx.Commands.Take() {
					if cmd.Kind != command.Collide {
						continue
					}
					landed = true
					if !vecNear(cmd.Normal, cp.Vector{Y: -1}, 1e-12) {
						t.Fatalf("frame %d: normal %v want (0,-1)", frame, cmd.Normal)
					}
				}
			}

			if !landed || !p.OnGround {
				t.Fatalf("body never landed")
			}
			if !near(lowest(tr), 128, 1e-9) {
				t.Fatalf("lowest vertex %v, want resting on 128", lowest(tr))
			}
			if !vecNear(p.Vel, cp.Vector{X: 20}, eps) {
				t.Fatalf("frictionless slide lost speed: vel %v", p.Vel)
			}
			if !near(tr.Pos.X, 120, 1e-6) {
				t.Fatalf("pos %v want x=120", tr.Pos)
			}
		})
	}
}

func TestMoveSlidesAlongWall(t *testing.T) {
	ctx := newContext(floorMap(t))
	ctx.Gravity = 0
	e := spawn(t, ctx.World, cp.Vector{X: 70, Y: 40}, cp.Vector{X: 8, Y: 8}, component.ModeWorld, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{X: 200, Y: 100}
	})

	Move(ctx, e, cp.Vector{X: 20, Y: 10})

	p, tr := bodyOf(t, ctx.World, e)
	if !vecNear(tr.Pos, cp.Vector{X: 76, Y: 50}, eps) {
		t.Fatalf("pos %v want (76,50)", tr.Pos)
	}
	if !vecNear(p.Vel, cp.Vector{Y: 100}, eps) {
		t.Fatalf("velocity should be projected onto the wall, got %v", p.Vel)
	}
	if p.OnGround {
		t.Fatalf("a wall is not ground")
	}
}

func TestMoveBouncesOffFloor(t *testing.T) {
	ctx := newContext(floorMap(t))
	e := spawn(t, ctx.World, cp.Vector{X: 40, Y: 120}, cp.Vector{X: 8, Y: 8}, component.ModeActive, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{Y: 100}
		p.Restitution = 0.5
	})

	Move(ctx, e, cp.Vector{Y: 10})

	p, tr := bodyOf(t, ctx.World, e)
	if !vecNear(p.Vel, cp.Vector{Y: -50}, eps) {
		t.Fatalf("vel %v want (0,-50)", p.Vel)
	}
	if p.OnGround {
		t.Fatalf("a bounce does not land")
	}
	if !near(tr.Pos.Y, 124, eps) {
		t.Fatalf("pos %v want y=124", tr.Pos)
	}
}

func TestMoveWithoutWorldTranslates(t *testing.T) {
	ctx := newContext(floorMap(t))
	e := spawn(t, ctx.World, cp.Vector{X: 40, Y: 120}, cp.Vector{X: 8, Y: 8}, component.ModeMove)
	Move(ctx, e, cp.Vector{Y: 50})
	_, tr := bodyOf(t, ctx.World, e)
	if tr.Pos != (cp.Vector{X: 40, Y: 170}) {
		t.Fatalf("pos %v want (40,170)", tr.Pos)
	}
	if ctx.Commands.Len() != 0 {
		t.Fatalf("no trace, no command")
	}
}

func TestMoveShares(t *testing.T) {
	mode := func(m component.PhysicsMode, mass float64) *component.PhysicsBody {
		b := component.NewPhysicsBody(m)
		b.Mass = mass
		return &b
	}
	cases := []struct {
		name         string
		a, b         *component.PhysicsBody
		wantA, wantB float64
	}{
		{"lite_yields", mode(component.ModeLite, 1), mode(component.ModeActive, 1), 1, 0},
		{"fixed_holds", mode(component.ModeActive, 1), mode(component.ModeFixed, 1), 1, 0},
		{"fixed_first", mode(component.ModeFixed, 1), mode(component.ModeActive, 1), 0, 1},
		{"lite_second", mode(component.ModeActive, 1), mode(component.ModeLite, 1), 0, 1},
		{"mass_weighted", mode(component.ModeActive, 1), mode(component.ModeActive, 3), 0.75, 0.25},
		{"equal", mode(component.ModeActive, 2), mode(component.ModePassive, 2), 0.5, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := MoveShares(tc.a, tc.b)
			if !near(a, tc.wantA, eps) || !near(b, tc.wantB, eps) {
				t.Fatalf("got %v,%v want %v,%v", a, b, tc.wantA, tc.wantB)
			}
		})
	}
}

func TestResolveMassWeighted(t *testing.T) {
	ctx := newContext(nil)
	a := spawn(t, ctx.World, cp.Vector{}, cp.Vector{X: 10, Y: 10}, component.ModeActive, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{X: 20}
	})
	b := spawn(t, ctx.World, cp.Vector{X: 8}, cp.Vector{X: 10, Y: 10}, component.ModeActive, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{X: -20}
		p.Mass = 3
	})

	ResolveCollision(ctx, a, b, cp.Vector{X: 2})

	_, ta := bodyOf(t, ctx.World, a)
	_, tb := bodyOf(t, ctx.World, b)
	movedA := math.Abs(ta.Pos.X)
	movedB := math.Abs(tb.Pos.X - 8)
	if !near(movedA, 1.5, eps) || !near(movedB, 0.5, eps) {
		t.Fatalf("moved a=%v b=%v want 1.5 and 0.5", movedA, movedB)
	}
	if !near(movedA, 3*movedB, eps) {
		t.Fatalf("lighter body should move 3x as far")
	}
	if !near(tb.Bounds().Min.X, ta.Bounds().Max.X, eps) {
		t.Fatalf("bodies should end flush: %v %v", ta.Bounds(), tb.Bounds())
	}

	cmds := ctx.Commands.Take()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 collide commands, got %d", len(cmds))
	}
	if cmds[0].Ent != a || cmds[0].Normal != (cp.Vector{X: -1}) || cmds[1].Ent != b || cmds[1].Normal != (cp.Vector{X: 1}) {
		t.Fatalf("unexpected commands %+v", cmds)
	}
}

func TestResolveSymmetry(t *testing.T) {
	cases := []struct {
		name         string
		posA, posB   cp.Vector
		sizeA, sizeB cp.Vector
		massA, massB float64
	}{
		{"side_by_side", cp.Vector{}, cp.Vector{X: 7, Y: 1}, cp.Vector{X: 10, Y: 10}, cp.Vector{X: 10, Y: 10}, 1, 1},
		{"stacked", cp.Vector{}, cp.Vector{X: 1, Y: 6}, cp.Vector{X: 10, Y: 10}, cp.Vector{X: 8, Y: 4}, 2, 1},
		{"b_left_of_a", cp.Vector{X: 20}, cp.Vector{X: 12, Y: -2}, cp.Vector{X: 10, Y: 20}, cp.Vector{X: 8, Y: 8}, 1, 4},
		{"b_above_a", cp.Vector{X: 20, Y: 20}, cp.Vector{X: 21, Y: 13}, cp.Vector{X: 10, Y: 10}, cp.Vector{X: 10, Y: 10}, 5, 1},
	}

	run := func(t *testing.T, swap bool, posA, posB, sizeA, sizeB cp.Vector, massA, massB float64) (cp.Vector, cp.Vector, float64) {
		ctx := newContext(nil)
		a := spawn(t, ctx.World, posA, sizeA, component.ModeActive, func(p *component.PhysicsBody) { p.Mass = massA })
		b := spawn(t, ctx.World, posB, sizeB, component.ModeActive, func(p *component.PhysicsBody) { p.Mass = massB })
		_, ta := bodyOf(t, ctx.World, a)
		_, tb := bodyOf(t, ctx.World, b)

		first, second := a, b
		trFirst, trSecond := ta, tb
		if swap {
			first, second = b, a
			trFirst, trSecond = tb, ta
		}
		v := overlapOf(trFirst, trSecond)
		if v == (cp.Vector{}) {
			t.Fatalf("setup does not overlap")
		}
		ResolveCollision(ctx, first, second, v)
		after := overlapOf(trFirst, trSecond)
		if after.Length() >= v.Length() {
			t.Fatalf("overlap grew from %v to %v", v, after)
		}
		return ta.Pos, tb.Pos, after.Length()
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a1, b1, _ := run(t, false, tc.posA, tc.posB, tc.sizeA, tc.sizeB, tc.massA, tc.massB)
			a2, b2, _ := run(t, true, tc.posA, tc.posB, tc.sizeA, tc.sizeB, tc.massA, tc.massB)
			if !vecNear(a1, a2, eps) || !vecNear(b1, b2, eps) {
				t.Fatalf("resolution is not symmetric: (%v,%v) vs (%v,%v)", a1, b1, a2, b2)
			}
		})
	}
}

func TestResolveFixedNeverMoves(t *testing.T) {
	ctx := newContext(nil)
	wall := spawn(t, ctx.World, cp.Vector{}, cp.Vector{X: 10, Y: 10}, component.ModeFixed)
	box := spawn(t, ctx.World, cp.Vector{X: 8}, cp.Vector{X: 10, Y: 10}, component.ModeActive)

	ResolveCollision(ctx, wall, box, cp.Vector{X: 2})

	_, tw := bodyOf(t, ctx.World, wall)
	_, tb := bodyOf(t, ctx.World, box)
	if tw.Pos != (cp.Vector{}) {
		t.Fatalf("fixed body moved to %v", tw.Pos)
	}
	if !near(tb.Pos.X, 10, eps) {
		t.Fatalf("box should take the whole correction, at %v", tb.Pos)
	}
}

func TestResolveStackOnGround(t *testing.T) {
	ctx := newContext(nil)
	ctx.Tick = 0.1
	top := spawn(t, ctx.World, cp.Vector{Y: 0}, cp.Vector{X: 10, Y: 10}, component.ModeActive, func(p *component.PhysicsBody) {
		p.Vel = cp.Vector{Y: 5}
	})
	bottom := spawn(t, ctx.World, cp.Vector{Y: 8}, cp.Vector{X: 10, Y: 10}, component.ModeActive, func(p *component.PhysicsBody) {
		p.OnGround = true
		p.Vel = cp.Vector{X: 50}
	})

	ResolveCollision(ctx, top, bottom, cp.Vector{Y: 2})

	pt, tt := bodyOf(t, ctx.World, top)
	_, tb := bodyOf(t, ctx.World, bottom)
	if tb.Pos != (cp.Vector{Y: 8}) {
		t.Fatalf("grounded bottom body moved to %v", tb.Pos)
	}
	if !vecNear(tt.Pos, cp.Vector{X: 5, Y: -2}, eps) {
		t.Fatalf("top pos %v want (5,-2)", tt.Pos)
	}
	if !pt.OnGround {
		t.Fatalf("top body should stand on the bottom one")
	}
	if !near(pt.Vel.Y, 0, eps) {
		t.Fatalf("top should take the bottom's vertical velocity, got %v", pt.Vel)
	}
}

func TestResolveSkipsMissingComponents(t *testing.T) {
	ctx := newContext(nil)
	a := spawn(t, ctx.World, cp.Vector{}, cp.Vector{X: 10, Y: 10}, component.ModeActive)
	b := ctx.World.CreateEntity()

	ResolveCollision(ctx, a, b, cp.Vector{X: 2})

	_, ta := bodyOf(t, ctx.World, a)
	if ta.Pos != (cp.Vector{}) || ctx.Commands.Len() != 0 {
		t.Fatalf("pair with a missing body must be skipped")
	}
}

func TestResolveDuplicateHandlePanics(t *testing.T) {
	ctx := newContext(nil)
	a := spawn(t, ctx.World, cp.Vector{}, cp.Vector{X: 10, Y: 10}, component.ModeActive)
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ecs.ErrDuplicateHandle) {
			t.Fatalf("expected duplicate handle panic, got %v", err)
		}
	}()
	ResolveCollision(ctx, a, a, cp.Vector{X: 1})
}
