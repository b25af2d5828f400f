package tilemap

import (
	"image"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/geom"
)

// Trace is the result of sweeping a shape through the map.
type Trace struct {
	Hit bool
	// Tile is the id of the tile that was hit, 0 without a hit.
	Tile    uint16
	TilePos image.Point
	// Length is the fraction 0..1 of the displacement that was free.
	Length float64
	// Pos is the center of the shape at the end of the trace.
	Pos    cp.Vector
	Normal cp.Vector

	sloped bool
}

func floorTile(p cp.Vector, tileSize float64) image.Point {
	return image.Point{
		X: int(math.Floor(p.X / tileSize)),
		Y: int(math.Floor(p.Y / tileSize)),
	}
}

// Trace sweeps a rectangle of the given size centered at center along vel
// and returns how far it can travel before hitting a solid tile. Rotated
// shapes march with their rotated bounds and are tested against tiles with
// SAT; angle must be normalized.
func (m *CollisionMap) Trace(center, vel, size cp.Vector, angle float64) Trace {
	footprint := geom.CalcBounds(center, size.Mult(0.5), angle).Size()
	half := footprint.Mult(0.5)
	from := center.Sub(half)
	to := from.Add(vel)

	res := Trace{Length: 1, Pos: to}
	finish := func() Trace {
		res.Pos = res.Pos.Add(half)
		return res
	}

	if m == nil || m.TileSize <= 0 {
		return finish()
	}

	bounds := m.Bounds()
	if (from.X+footprint.X < 0 && to.X+footprint.X < 0) ||
		(from.Y+footprint.Y < 0 && to.Y+footprint.Y < 0) ||
		(from.X > bounds.X && to.X > bounds.X) ||
		(from.Y > bounds.Y && to.Y > bounds.Y) ||
		(vel.X == 0 && vel.Y == 0) {
		return finish()
	}

	var offset cp.Vector
	if vel.X > 0 {
		offset.X = 1
	}
	if vel.Y > 0 {
		offset.Y = 1
	}
	corner := from.Add(cp.Vector{X: footprint.X * offset.X, Y: footprint.Y * offset.Y})
	dir := cp.Vector{X: 1 - 2*offset.X, Y: 1 - 2*offset.Y}
	steps := int(math.Ceil(math.Max(math.Abs(vel.X), math.Abs(vel.Y)) / m.TileSize))
	if steps == 0 {
		return finish()
	}
	stepSize := vel.Mult(1 / float64(steps))

	sweep := sweepTest{
		m:      m,
		from:   from,
		vel:    vel,
		size:   footprint,
		exact:  geom.IsRightAngle(angle),
		shape:  geom.SatRect{Pos: center, HalfSize: size.Mult(0.5), Angle: angle},
		result: &res,
	}

	last := image.Point{X: math.MinInt, Y: math.MinInt}
	extraStep := false
	for i := 0; i <= steps; i++ {
		tile := floorTile(corner.Add(stepSize.Mult(float64(i))), m.TileSize)

		cornerChecked := 0
		if last.X != tile.X {
			// walk the leading vertical edge
			maxY := from.Y + footprint.Y*(1-offset.Y)
			if i > 0 {
				maxY += (vel.Y / vel.X) * ((float64(tile.X)+1-offset.X)*m.TileSize - corner.X)
			}
			n := int(math.Ceil(math.Abs(maxY/m.TileSize - float64(tile.Y) - offset.Y)))
			for t := 0; t < n; t++ {
				sweep.check(image.Point{X: tile.X, Y: tile.Y + int(dir.Y)*t})
			}
			last.X = tile.X
			cornerChecked = 1
		}

		if last.Y != tile.Y {
			// walk the leading horizontal edge
			maxX := from.X + footprint.X*(1-offset.X)
			if i > 0 {
				maxX += (vel.X / vel.Y) * ((float64(tile.Y)+1-offset.Y)*m.TileSize - corner.Y)
			}
			n := int(math.Ceil(math.Abs(maxX/m.TileSize - float64(tile.X) - offset.X)))
			for t := cornerChecked; t < n; t++ {
				sweep.check(image.Point{X: tile.X + int(dir.X)*t, Y: tile.Y})
			}
			last.Y = tile.Y
		}

		// An earlier contact may still hide one step behind a sloped hit.
		if res.Hit && (!res.sloped || extraStep) {
			return finish()
		}
		if res.Hit {
			extraStep = true
		}
	}

	return finish()
}

type sweepTest struct {
	m      *CollisionMap
	from   cp.Vector // top left of the footprint
	vel    cp.Vector
	size   cp.Vector
	exact  bool
	shape  geom.SatRect
	result *Trace
}

func (s *sweepTest) check(tile image.Point) {
	if !s.m.IsCollide(tile) {
		return
	}
	if s.exact {
		s.resolveFullTile(tile)
		return
	}
	s.resolveOrientedTile(tile)
}

// resolveFullTile back-solves the entry into an axis-aligned tile. Only the
// coordinate of the entered axis is exact; the other one is recomputed from
// the solved length.
func (s *sweepTest) resolveFullTile(tile image.Point) {
	ts := s.m.TileSize
	pos, vel, res := s.from, s.vel, s.result

	rp := cp.Vector{X: float64(tile.X) * ts, Y: float64(tile.Y) * ts}
	if vel.X > 0 {
		rp.X -= s.size.X
	} else {
		rp.X += ts
	}
	if vel.Y > 0 {
		rp.Y -= s.size.Y
	} else {
		rp.Y += ts
	}

	// The sign of the cross product of the movement with the tile corner
	// tells horizontal from vertical entry.
	sign := (vel.X*(rp.Y-pos.Y) - vel.Y*(rp.X-pos.X)) * vel.X * vel.Y

	var length float64
	var normal cp.Vector
	if sign < 0 || vel.Y == 0 {
		length = math.Abs((pos.X - rp.X) / vel.X)
		if length > res.Length {
			return
		}
		rp.Y = pos.Y + length*vel.Y
		normal = cp.Vector{X: 1}
		if vel.X > 0 {
			normal.X = -1
		}
	} else {
		length = math.Abs((pos.Y - rp.Y) / vel.Y)
		if length > res.Length {
			return
		}
		rp.X = pos.X + length*vel.X
		normal = cp.Vector{Y: 1}
		if vel.Y > 0 {
			normal.Y = -1
		}
	}

	s.record(tile, length, rp, normal, false)
}

// resolveOrientedTile sweeps the rotated shape against the tile square.
func (s *sweepTest) resolveOrientedTile(tile image.Point) {
	ts := s.m.TileSize
	square := geom.SatRect{
		Pos:      cp.Vector{X: (float64(tile.X) + 0.5) * ts, Y: (float64(tile.Y) + 0.5) * ts},
		HalfSize: cp.Vector{X: ts * 0.5, Y: ts * 0.5},
	}

	length, normal, ok := geom.SatSweep(s.shape, s.vel, square)
	if !ok || length > s.result.Length {
		return
	}
	s.record(tile, length, s.from.Add(s.vel.Mult(length)), normal, true)
}

func (s *sweepTest) record(tile image.Point, length float64, pos, normal cp.Vector, sloped bool) {
	res := s.result
	id, _ := s.m.Get(tile)
	res.Hit = true
	res.Tile = id
	res.TilePos = tile
	res.Length = length
	res.Pos = pos
	res.Normal = normal
	res.sloped = sloped
}
