package geom

import "github.com/jakecoffman/cp"

// Overlap returns the minimum translation vector between two shapes. The
// vector points from a toward b, so moving a by -overlap separates them.
// Shapes whose bounds do not touch are rejected before any SAT work; two
// right-angled shapes are resolved from their bounds directly and report a
// zero vector when they touch exactly.
func Overlap(a, b SatRect) (cp.Vector, bool) {
	ba := a.Bounds()
	bb := b.Bounds()
	if !ba.IsTouching(bb) {
		return cp.Vector{}, false
	}
	if IsRightAngle(a.Angle) && IsRightAngle(b.Angle) {
		return BoundsOverlap(ba, bb), true
	}
	return SatOverlap(a, b)
}

// BoundsOverlap returns the minimum translation vector of two touching
// axis-aligned rects. Ties between the axes resolve vertically.
func BoundsOverlap(a, b Rect) cp.Vector {
	penX := min(a.Max.X, b.Max.X) - max(a.Min.X, b.Min.X)
	penY := min(a.Max.Y, b.Max.Y) - max(a.Min.Y, b.Min.Y)
	if penX <= 0 || penY <= 0 {
		return cp.Vector{}
	}

	ca, cb := a.Center(), b.Center()
	if penY <= penX {
		if cb.Y < ca.Y {
			penY = -penY
		}
		return cp.Vector{Y: penY}
	}
	if cb.X < ca.X {
		penX = -penX
	}
	return cp.Vector{X: penX}
}
