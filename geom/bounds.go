package geom

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

const halfPi = math.Pi * 0.5

// IsRightAngle reports whether angle is exactly 0, ±90° or ±180°.
func IsRightAngle(angle float64) bool {
	if angle == 0 {
		return true
	}
	a := math.Abs(angle)
	return a == math.Pi || a == halfPi
}

// CalcBounds returns the axis-aligned rect containing a rectangle centered at
// pos with the given half size, rotated by angle. The result is exact for
// right angles and conservative otherwise.
//
// angle must be normalized to [-π, π]; anything else panics.
func CalcBounds(pos, halfSize cp.Vector, angle float64) Rect {
	if angle == 0 || math.Abs(angle) == math.Pi {
		return RectFromCenter(pos, halfSize)
	}
	if math.Abs(angle) == halfPi {
		return RectFromCenter(pos, cp.Vector{X: halfSize.Y, Y: halfSize.X})
	}

	rot := cp.ForAngle(angle)
	p1 := cp.Vector{X: halfSize.X, Y: -halfSize.Y}
	p2 := halfSize
	p3 := cp.Vector{X: -halfSize.X, Y: halfSize.Y}
	p4 := halfSize.Neg()

	// Each quadrant has a fixed corner that is extreme on each axis.
	var maxX, minX, maxY, minY float64
	switch {
	case angle > 0 && angle < halfPi:
		maxX, minX = rot.Rotate(p1).X, rot.Rotate(p3).X
		maxY, minY = rot.Rotate(p2).Y, rot.Rotate(p4).Y
	case angle > halfPi && angle < math.Pi:
		maxX, minX = rot.Rotate(p4).X, rot.Rotate(p2).X
		maxY, minY = rot.Rotate(p1).Y, rot.Rotate(p3).Y
	case angle > -math.Pi && angle < -halfPi:
		maxX, minX = rot.Rotate(p3).X, rot.Rotate(p1).X
		maxY, minY = rot.Rotate(p4).Y, rot.Rotate(p2).Y
	case angle > -halfPi && angle < 0:
		maxX, minX = rot.Rotate(p2).X, rot.Rotate(p4).X
		maxY, minY = rot.Rotate(p3).Y, rot.Rotate(p1).Y
	default:
		panic(fmt.Sprintf("geom: unnormalized angle %v", angle))
	}

	return Rect{
		Min: pos.Add(cp.Vector{X: minX, Y: minY}),
		Max: pos.Add(cp.Vector{X: maxX, Y: maxY}),
	}
}

// NormalizeAngle wraps angle into (-π, π].
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
