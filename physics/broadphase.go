package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/geom"
)

// SweepAxis is the axis the broad phase sorts and prunes along.
type SweepAxis uint8

const (
	SweepX SweepAxis = iota
	SweepY
)

// Get projects v onto the axis.
func (a SweepAxis) Get(v cp.Vector) float64 {
	if a == SweepY {
		return v.Y
	}
	return v.X
}

func (a SweepAxis) String() string {
	switch a {
	case SweepX:
		return "x"
	case SweepY:
		return "y"
	}
	return fmt.Sprintf("SweepAxis(%d)", uint8(a))
}

// CollisionSet is the roster of entities taking part in entity collisions.
// Insertion order does not matter; the broad phase re-sorts it every frame
// and keeps the sorted order for the next one.
type CollisionSet struct {
	ents  []ecs.Entity
	index map[ecs.Entity]struct{}
}

// NewCollisionSet creates an empty roster.
func NewCollisionSet() *CollisionSet {
	return &CollisionSet{index: make(map[ecs.Entity]struct{})}
}

// Add registers e. Adding an entity twice is a no-op.
func (s *CollisionSet) Add(e ecs.Entity) {
	if s == nil {
		return
	}
	if s.index == nil {
		s.index = make(map[ecs.Entity]struct{})
	}
	if _, ok := s.index[e]; ok {
		return
	}
	s.index[e] = struct{}{}
	s.ents = append(s.ents, e)
}

// Remove unregisters e and reports whether it was present.
func (s *CollisionSet) Remove(e ecs.Entity) bool {
	if s == nil {
		return false
	}
	if _, ok := s.index[e]; !ok {
		return false
	}
	delete(s.index, e)
	for i, other := range s.ents {
		if other == e {
			s.ents = append(s.ents[:i], s.ents[i+1:]...)
			break
		}
	}
	return true
}

func (s *CollisionSet) Contains(e ecs.Entity) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[e]
	return ok
}

func (s *CollisionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ents)
}

// Entities returns a copy of the roster in its current order.
func (s *CollisionSet) Entities() []ecs.Entity {
	if s == nil {
		return nil
	}
	return append([]ecs.Entity(nil), s.ents...)
}

// Pair is a candidate pair in sweep order.
type Pair struct {
	A, B ecs.Entity
}

// sortRoster orders the roster by the bounds minimum on axis and returns the
// entities that can be swept. Handles that lost their components stay in the
// roster after the sorted ones.
func (s *CollisionSet) sortRoster(w *ecs.World, axis SweepAxis) []body {
	type keyed struct {
		b   body
		key float64
	}
	live := make([]keyed, 0, len(s.ents))
	var stale []ecs.Entity
	for _, e := range s.ents {
		b, ok := lookup(w, e)
		if !ok {
			stale = append(stale, e)
			continue
		}
		live = append(live, keyed{b: b, key: axis.Get(b.tr.Bounds().Min)})
	}

	InsertionSortBy(live, func(a, b keyed) bool { return a.key < b.key })

	out := make([]body, len(live))
	s.ents = s.ents[:0]
	for i, k := range live {
		out[i] = k.b
		s.ents = append(s.ents, k.b.ent)
	}
	s.ents = append(s.ents, stale...)
	return out
}

// sweepable reports whether an entity can start a pair. Anything that can
// neither touch nor be resolved is skipped.
func sweepable(p *component.PhysicsBody) bool {
	return p.Group != component.GroupNone ||
		p.CheckAgainst != component.GroupNone ||
		p.Mode.AtLeast(component.LevelLite)
}

// sweep calls fn for every pair whose bounds touch, pruning along axis.
// Bounds are read live, so fn may move entities.
func (s *CollisionSet) sweep(w *ecs.World, axis SweepAxis, fn func(a, b body)) {
	if s == nil {
		return
	}
	sorted := s.sortRoster(w, axis)
	for i, a := range sorted {
		if !sweepable(a.phys) {
			continue
		}
		maxPos := axis.Get(a.tr.Bounds().Max)
		for _, b := range sorted[i+1:] {
			bb := b.tr.Bounds()
			if axis.Get(bb.Min) > maxPos {
				break
			}
			if !a.tr.Bounds().IsTouching(bb) {
				continue
			}
			fn(a, b)
		}
	}
}

// Pairs sorts the roster and returns every pair whose bounds touch.
func Pairs(w *ecs.World, set *CollisionSet, axis SweepAxis) []Pair {
	var out []Pair
	set.sweep(w, axis, func(a, b body) {
		out = append(out, Pair{A: a.ent, B: b.ent})
	})
	return out
}

// ShouldResolve reports whether two bodies push each other apart: both are
// at least lite, one of them is active or fixed, and they have mass.
func ShouldResolve(a, b *component.PhysicsBody) bool {
	return a.Mode.AtLeast(component.LevelLite) &&
		b.Mode.AtLeast(component.LevelLite) &&
		(a.Mode.AtLeast(component.LevelActive) || b.Mode.AtLeast(component.LevelActive)) &&
		a.Mass+b.Mass > 0
}

// UpdateCollision runs the broad phase over the roster, queues touch
// commands and resolves overlapping pairs in sweep order.
func UpdateCollision(ctx *Context, set *CollisionSet, axis SweepAxis) {
	if ctx == nil {
		return
	}
	set.sweep(ctx.World, axis, func(a, b body) {
		if a.phys.CheckAgainst&b.phys.Group != 0 {
			ctx.Commands.Touch(a.ent, b.ent)
		}
		if a.phys.Group&b.phys.CheckAgainst != 0 {
			ctx.Commands.Touch(b.ent, a.ent)
		}
		if !ShouldResolve(a.phys, b.phys) {
			return
		}
		overlap, ok := geom.Overlap(a.tr.Shape(), b.tr.Shape())
		if !ok || (overlap.X == 0 && overlap.Y == 0) {
			return
		}
		ResolveCollision(ctx, a.ent, b.ent, overlap)
	})
}
