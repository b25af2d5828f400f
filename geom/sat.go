package geom

import (
	"math"

	"github.com/jakecoffman/cp"
)

// SatRect is an oriented rectangle used by the separating axis test.
type SatRect struct {
	Pos      cp.Vector // center
	HalfSize cp.Vector
	Angle    float64 // radians
}

// Vertices returns the four rotated corners: left-bottom, right-bottom,
// right-top, left-top.
func (r SatRect) Vertices() [4]cp.Vector {
	s, c := math.Sincos(r.Angle)
	w, h := r.HalfSize.X, r.HalfSize.Y
	return [4]cp.Vector{
		r.Pos.Add(cp.Vector{X: -w*c - h*s, Y: -w*s + h*c}),
		r.Pos.Add(cp.Vector{X: w*c - h*s, Y: w*s + h*c}),
		r.Pos.Add(cp.Vector{X: w*c + h*s, Y: w*s - h*c}),
		r.Pos.Add(cp.Vector{X: -w*c + h*s, Y: -w*s - h*c}),
	}
}

// Bounds returns the axis-aligned bounds of the rectangle.
func (r SatRect) Bounds() Rect {
	return CalcBounds(r.Pos, r.HalfSize, r.Angle)
}

type projection struct {
	min, max float64
}

func project(vertices [4]cp.Vector, axis cp.Vector) projection {
	p := projection{min: vertices[0].Dot(axis)}
	p.max = p.min
	for _, v := range vertices[1:] {
		d := v.Dot(axis)
		if d < p.min {
			p.min = d
		} else if d > p.max {
			p.max = d
		}
	}
	return p
}

func projectionOverlap(a, b projection) (float64, bool) {
	overlap := min(a.max, b.max) - max(a.min, b.min)
	return overlap, overlap > 0
}

func satAxes(va, vb [4]cp.Vector) [4]cp.Vector {
	// two edge normals per rectangle are enough
	return [4]cp.Vector{
		va[1].Sub(va[0]).Perp(),
		va[3].Sub(va[0]).Perp(),
		vb[1].Sub(vb[0]).Perp(),
		vb[3].Sub(vb[0]).Perp(),
	}
}

// SatOverlap runs the separating axis test on two oriented rectangles. It
// returns the penetration vector along the axis of least overlap, pointing
// from a toward b, or false if an axis separates them.
func SatOverlap(a, b SatRect) (cp.Vector, bool) {
	axis, depth, ok := leastOverlap(a, b)
	if !ok {
		return cp.Vector{}, false
	}
	return axis.Mult(depth), true
}

// leastOverlap returns the unit axis of least overlap, pointing from a toward
// b, and the overlap along it.
func leastOverlap(a, b SatRect) (cp.Vector, float64, bool) {
	va := a.Vertices()
	vb := b.Vertices()

	minOverlap := math.MaxFloat64
	var minAxis cp.Vector
	for _, axis := range satAxes(va, vb) {
		if axis.X == 0 && axis.Y == 0 {
			// zero-sized edge
			continue
		}
		axis = axis.Normalize()
		overlap, ok := projectionOverlap(project(va, axis), project(vb, axis))
		if !ok {
			return cp.Vector{}, 0, false
		}
		if overlap < minOverlap {
			minOverlap = overlap
			minAxis = axis
		}
	}
	if minOverlap == math.MaxFloat64 {
		return cp.Vector{}, 0, false
	}

	if b.Pos.Sub(a.Pos).Dot(minAxis) < 0 {
		minAxis = minAxis.Neg()
	}
	return minAxis, minOverlap, true
}

// satSlop is how close two projections may come on an axis the motion does
// not cross before they count as overlapping.
const satSlop = 1e-9

// SatSweep moves a along vel against the resting b and returns the fraction
// of vel after which they first touch, with the contact normal pointing from
// b toward a. Contact happens once the projections overlap on every axis, so
// the latest entry over all axes is the time of impact and that axis is the
// normal.
//
// When a already overlaps b the result is 0 along the axis of least
// penetration, unless vel does not push deeper along it; then a may move
// freely.
func SatSweep(a SatRect, vel cp.Vector, b SatRect) (float64, cp.Vector, bool) {
	if vel.X == 0 && vel.Y == 0 {
		return 0, cp.Vector{}, false
	}
	va := a.Vertices()
	vb := b.Vertices()

	first, last := math.Inf(-1), math.Inf(1)
	var normal cp.Vector
	// b first, so a tie prefers its faces
	for _, axis := range satAxes(vb, va) {
		if axis.X == 0 && axis.Y == 0 {
			continue
		}
		axis = axis.Normalize()
		pa, pb := project(va, axis), project(vb, axis)
		speed := vel.Dot(axis)

		var enter, exit float64
		switch {
		case speed > 0:
			enter, exit = (pb.min-pa.max)/speed, (pb.max-pa.min)/speed
		case speed < 0:
			enter, exit = (pb.max-pa.min)/speed, (pb.min-pa.max)/speed
		default:
			if pa.max <= pb.min+satSlop || pa.min >= pb.max-satSlop {
				return 0, cp.Vector{}, false
			}
			continue
		}

		if enter > first {
			first = enter
			normal = axis
			if speed > 0 {
				normal = axis.Neg()
			}
		}
		if exit < last {
			last = exit
		}
	}

	if math.IsInf(first, -1) || first > last || first >= 1 || last <= 0 {
		return 0, cp.Vector{}, false
	}
	if first >= 0 {
		return first, normal, true
	}

	// already overlapping
	axis, _, ok := leastOverlap(a, b)
	if !ok {
		return 0, normal, true
	}
	axis = axis.Neg()
	if vel.Dot(axis) >= 0 {
		return 0, cp.Vector{}, false
	}
	return 0, axis, true
}
