package geom

import "github.com/jakecoffman/cp"

// Rect is an axis-aligned rectangle. Min is componentwise <= Max.
type Rect struct {
	Min cp.Vector
	Max cp.Vector
}

// RectFromCenter builds a rect around center with the given half extents.
func RectFromCenter(center, halfSize cp.Vector) Rect {
	return Rect{Min: center.Sub(halfSize), Max: center.Add(halfSize)}
}

// BB converts the rect to a chipmunk bounding box.
func (r Rect) BB() cp.BB {
	return cp.BB{L: r.Min.X, B: r.Min.Y, R: r.Max.X, T: r.Max.Y}
}

// IsTouching reports whether the closed rects share at least one point.
func (r Rect) IsTouching(other Rect) bool {
	return r.BB().Intersects(other.BB())
}

// ContainsPos reports whether pos lies inside the closed rect.
func (r Rect) ContainsPos(pos cp.Vector) bool {
	return r.BB().ContainsVect(pos)
}

func (r Rect) Size() cp.Vector {
	return r.Max.Sub(r.Min)
}

func (r Rect) Center() cp.Vector {
	return r.Min.Add(r.Max).Mult(0.5)
}

// Merge returns the smallest rect containing both rects.
func (r Rect) Merge(other Rect) Rect {
	return Rect{
		Min: cp.Vector{X: min(r.Min.X, other.Min.X), Y: min(r.Min.Y, other.Min.Y)},
		Max: cp.Vector{X: max(r.Max.X, other.Max.X), Y: max(r.Max.Y, other.Max.Y)},
	}
}
