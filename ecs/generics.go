package ecs

import (
	"fmt"

	"github.com/milk9111/impact2d/ecs/component"
)

func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	if value == nil {
		return ErrNilComponent
	}
	return w.AddComponent(e, kind.ID(), value)
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.RemoveComponent(e, kind.ID())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	return w.HasComponent(e, kind.ID())
}

// Get returns a pointer to the stored component; writes through it are
// visible to every later reader.
func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	value, ok := w.GetComponent(e, kind.ID())
	if !ok {
		return nil, false
	}
	cast, ok := value.(*T)
	return cast, ok
}

// GetPair returns the components of two distinct entities at once. Either
// result is nil if that entity is dead or lacks the component. Naming the
// same slot twice panics with ErrDuplicateHandle.
func GetPair[T any](w *World, kind component.ComponentKind[T], a, b Entity) (*T, *T) {
	if a.id() == b.id() {
		panic(fmt.Errorf("%w: %s and %s", ErrDuplicateHandle, a, b))
	}
	ca, _ := Get(w, a, kind)
	cb, _ := Get(w, b, kind)
	return ca, cb
}

// GetMany is the n-ary form of GetPair.
func GetMany[T any](w *World, kind component.ComponentKind[T], ents ...Entity) []*T {
	seen := make(map[entityID]Entity, len(ents))
	out := make([]*T, len(ents))
	for i, e := range ents {
		if prev, ok := seen[e.id()]; ok {
			panic(fmt.Errorf("%w: %s and %s", ErrDuplicateHandle, prev, e))
		}
		seen[e.id()] = e
		out[i], _ = Get(w, e, kind)
	}
	return out
}

// ForEach calls fn for every live entity carrying the component.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	s := w.store(kind.ID(), false)
	if s == nil {
		return
	}
	for _, id := range append([]entityID(nil), s.denseEntities...) {
		v, ok := s.Get(id).(*T)
		if !ok {
			continue
		}
		fn(w.entityFor(id), v)
	}
}

// ForEach2 calls fn for every live entity carrying both components.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	sa := w.store(ka.ID(), false)
	sb := w.store(kb.ID(), false)
	for _, id := range intersectIDs(sa, sb) {
		a, okA := sa.Get(id).(*A)
		b, okB := sb.Get(id).(*B)
		if !okA || !okB {
			continue
		}
		fn(w.entityFor(id), a, b)
	}
}

// Query returns the live entities carrying every listed component id.
func (w *World) Query(ids ...component.ComponentID) []Entity {
	if w == nil || len(ids) == 0 {
		return nil
	}
	sets := make([]*SparseSet, len(ids))
	for i, id := range ids {
		sets[i] = w.store(id, false)
	}
	matched := intersectIDs(sets...)
	out := make([]Entity, 0, len(matched))
	for _, id := range matched {
		out = append(out, w.entityFor(id))
	}
	return out
}
