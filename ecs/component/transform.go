package component

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/geom"
)

// Transform places an entity's rectangle in the world. Pos is the center.
type Transform struct {
	Pos    cp.Vector
	Size   cp.Vector
	Scale  cp.Vector
	Angle  float64 // radians, normalized to [-π, π]
	ZIndex int
}

var TransformComponent = NewComponent[Transform]()

// NewTransform returns an unrotated, unscaled transform.
func NewTransform(pos, size cp.Vector) Transform {
	return Transform{Pos: pos, Size: size, Scale: cp.Vector{X: 1, Y: 1}}
}

// ScaledSize ignores the sign of Scale; a mirrored shape covers the same
// rectangle.
func (t *Transform) ScaledSize() cp.Vector {
	return cp.Vector{X: math.Abs(t.Size.X * t.Scale.X), Y: math.Abs(t.Size.Y * t.Scale.Y)}
}

// Bounds returns the axis-aligned rect containing the rotated shape.
func (t *Transform) Bounds() geom.Rect {
	return geom.CalcBounds(t.Pos, t.ScaledSize().Mult(0.5), t.Angle)
}

// Shape returns the oriented rectangle used by the narrow phase.
func (t *Transform) Shape() geom.SatRect {
	return geom.SatRect{Pos: t.Pos, HalfSize: t.ScaledSize().Mult(0.5), Angle: t.Angle}
}
