package tilemap

import (
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/geom"
)

const eps = 1e-9

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecNear(a, b cp.Vector, tol float64) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol)
}

func newMap(t *testing.T, w, h int, solid ...image.Point) *CollisionMap {
	t.Helper()
	data := make([]uint16, w*h)
	for _, p := range solid {
		data[p.Y*w+p.X] = 1
	}
	m, err := NewCollisionMap("test", image.Pt(w, h), 16, data)
	if err != nil {
		t.Fatalf("NewCollisionMap: %v", err)
	}
	return m
}

func TestNewCollisionMapValidation(t *testing.T) {
	cases := []struct {
		name     string
		size     image.Point
		tileSize float64
		data     int
		wantErr  bool
	}{
		{"ok", image.Pt(3, 2), 16, 6, false},
		{"empty", image.Pt(0, 0), 16, 0, false},
		{"short_data", image.Pt(3, 2), 16, 5, true},
		{"zero_tile_size", image.Pt(3, 2), 0, 6, true},
		{"negative_size", image.Pt(-1, 2), 16, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCollisionMap(tc.name, tc.size, tc.tileSize, make([]uint16, tc.data))
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidMap) {
				t.Fatalf("expected ErrInvalidMap, got %v", err)
			}
		})
	}
}

func TestGetFailsSoftOutOfRange(t *testing.T) {
	m := newMap(t, 4, 3, image.Pt(1, 2))
	cases := []struct {
		tile   image.Point
		want   uint16
		wantOK bool
	}{
		{image.Pt(1, 2), 1, true},
		{image.Pt(0, 0), 0, true},
		{image.Pt(-1, 0), 0, false},
		{image.Pt(4, 0), 0, false},
		{image.Pt(0, 3), 0, false},
	}
	for _, tc := range cases {
		got, ok := m.Get(tc.tile)
		if got != tc.want || ok != tc.wantOK {
			t.Fatalf("Get(%v) = %d,%v want %d,%v", tc.tile, got, ok, tc.want, tc.wantOK)
		}
	}
	if m.IsCollide(image.Pt(-1, -1)) {
		t.Fatalf("out of range tile must not collide")
	}
	if got := m.Bounds(); got != (cp.Vector{X: 64, Y: 48}) {
		t.Fatalf("unexpected bounds %v", got)
	}
}

func TestCollisionRules(t *testing.T) {
	m, err := NewCollisionMap("rules", image.Pt(4, 1), 16, []uint16{0, 1, 2, 12})
	if err != nil {
		t.Fatal(err)
	}
	script, err := NewScriptRule([]byte(`is_solid := func(tile) { return tile == 1 || tile >= 10 }`))
	if err != nil {
		t.Fatalf("NewScriptRule: %v", err)
	}

	cases := []struct {
		name string
		rule CollisionRule
		want []bool
	}{
		{"default", DefaultRule{}, []bool{false, true, true, true}},
		{"tile_set", NewTileSetRule(2), []bool{false, false, true, false}},
		{"script", script, []bool{false, true, false, true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m.SetRule(tc.rule)
			for x, want := range tc.want {
				if got := m.IsCollide(image.Pt(x, 0)); got != want {
					t.Fatalf("tile %d: got %v want %v", x, got, want)
				}
			}
		})
	}

	if len(script.cache) != 4 {
		t.Fatalf("expected one cached result per tile id, got %d", len(script.cache))
	}
}

func TestScriptRuleRequiresPredicate(t *testing.T) {
	_, err := NewScriptRule([]byte(`x := 1`))
	if err == nil {
		t.Fatalf("expected compile error without is_solid")
	}
	if !strings.HasPrefix(err.Error(), "tilemap: ") {
		t.Fatalf("error not wrapped: %v", err)
	}
}

func TestTraceEmptyMapIsIdempotent(t *testing.T) {
	m := newMap(t, 10, 10)
	start := cp.Vector{X: 40, Y: 40}
	size := cp.Vector{X: 8, Y: 12}
	vels := []cp.Vector{
		{X: 0, Y: 0},
		{X: 13.7, Y: 0},
		{X: 0, Y: -55},
		{X: 31, Y: 17.25},
		{X: -120, Y: 300},
		{X: 0.001, Y: -0.002},
	}
	for _, angle := range []float64{0, math.Pi / 2, math.Pi / 5} {
		for _, vel := range vels {
			res := m.Trace(start, vel, size, angle)
			if res.Hit || res.Length != 1 {
				t.Fatalf("angle %v vel %v: unexpected hit %+v", angle, vel, res)
			}
			if !vecNear(res.Pos, start.Add(vel), eps) {
				t.Fatalf("angle %v vel %v: pos %v want %v", angle, vel, res.Pos, start.Add(vel))
			}
		}
	}
}

func TestTraceBoundaryExact(t *testing.T) {
	floor := make([]image.Point, 0, 10)
	for x := 0; x < 10; x++ {
		floor = append(floor, image.Pt(x, 8))
	}

	cases := []struct {
		name       string
		solid      []image.Point
		center     cp.Vector
		size       cp.Vector
		angle      float64
		vel        cp.Vector
		wantLength float64
		wantPos    cp.Vector
		wantNormal cp.Vector
		wantTile   image.Point
	}{
		{
			name:       "right_into_wall",
			solid:      []image.Point{image.Pt(5, 2)},
			center:     cp.Vector{X: 30, Y: 40},
			size:       cp.Vector{X: 8, Y: 8},
			vel:        cp.Vector{X: 100},
			wantLength: 0.46,
			wantPos:    cp.Vector{X: 76, Y: 40},
			wantNormal: cp.Vector{X: -1},
			wantTile:   image.Pt(5, 2),
		},
		{
			name:       "fall_onto_floor",
			solid:      floor,
			center:     cp.Vector{X: 40, Y: 100},
			size:       cp.Vector{X: 8, Y: 8},
			vel:        cp.Vector{Y: 50},
			wantLength: 0.48,
			wantPos:    cp.Vector{X: 40, Y: 124},
			wantNormal: cp.Vector{Y: -1},
			wantTile:   image.Pt(2, 8),
		},
		{
			name:       "resting_flush",
			solid:      floor,
			center:     cp.Vector{X: 40, Y: 124},
			size:       cp.Vector{X: 8, Y: 8},
			vel:        cp.Vector{Y: 10},
			wantLength: 0,
			wantPos:    cp.Vector{X: 40, Y: 124},
			wantNormal: cp.Vector{Y: -1},
			wantTile:   image.Pt(2, 8),
		},
		{
			name:       "left_into_wall",
			solid:      []image.Point{image.Pt(1, 2)},
			center:     cp.Vector{X: 60, Y: 40},
			size:       cp.Vector{X: 8, Y: 8},
			vel:        cp.Vector{X: -40},
			wantLength: 0.6,
			wantPos:    cp.Vector{X: 36, Y: 40},
			wantNormal: cp.Vector{X: 1},
			wantTile:   image.Pt(1, 2),
		},
		{
			name:       "quarter_turn_uses_swapped_footprint",
			solid:      []image.Point{image.Pt(5, 2)},
			center:     cp.Vector{X: 40, Y: 40},
			size:       cp.Vector{X: 16, Y: 8},
			angle:      math.Pi / 2,
			vel:        cp.Vector{X: 72},
			wantLength: 0.5,
			wantPos:    cp.Vector{X: 76, Y: 40},
			wantNormal: cp.Vector{X: -1},
			wantTile:   image.Pt(5, 2),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMap(t, 10, 10, tc.solid...)
			res := m.Trace(tc.center, tc.vel, tc.size, tc.angle)
			if !res.Hit {
				t.Fatalf("expected hit, got %+v", res)
			}
			if !near(res.Length, tc.wantLength, eps) {
				t.Fatalf("length %v want %v", res.Length, tc.wantLength)
			}
			if !vecNear(res.Pos, tc.wantPos, eps) {
				t.Fatalf("pos %v want %v", res.Pos, tc.wantPos)
			}
			if res.Normal != tc.wantNormal {
				t.Fatalf("normal %v want %v", res.Normal, tc.wantNormal)
			}
			if res.TilePos != tc.wantTile || res.Tile != 1 {
				t.Fatalf("tile %v (%d) want %v", res.TilePos, res.Tile, tc.wantTile)
			}
		})
	}
}

func TestTraceDiagonal(t *testing.T) {
	cases := []struct {
		name       string
		vel        cp.Vector
		wantLength float64
		wantNormal cp.Vector
	}{
		{"exact_corner", cp.Vector{X: 40, Y: 40}, 0.4, cp.Vector{Y: -1}},
		{"shallow_enters_top", cp.Vector{X: 40, Y: 30}, 16.0 / 30.0, cp.Vector{Y: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMap(t, 10, 10, image.Pt(5, 5))
			size := cp.Vector{X: 8, Y: 8}
			res := m.Trace(cp.Vector{X: 60, Y: 60}, tc.vel, size, 0)
			if !res.Hit || !near(res.Length, tc.wantLength, eps) {
				t.Fatalf("got %+v want length %v", res, tc.wantLength)
			}
			if res.Normal != tc.wantNormal {
				t.Fatalf("normal %v want %v", res.Normal, tc.wantNormal)
			}

			// no penetration into the tile
			tile := m.TileRect(image.Pt(5, 5))
			minX, maxX := res.Pos.X-4, res.Pos.X+4
			minY, maxY := res.Pos.Y-4, res.Pos.Y+4
			penX := math.Min(maxX, tile.Max.X) - math.Max(minX, tile.Min.X)
			penY := math.Min(maxY, tile.Max.Y) - math.Max(minY, tile.Min.Y)
			if penX > eps && penY > eps {
				t.Fatalf("shape penetrates tile by %v,%v", penX, penY)
			}
		})
	}
}

func TestTraceOutsideMap(t *testing.T) {
	m := newMap(t, 4, 4, image.Pt(0, 0), image.Pt(3, 3))
	cases := []struct {
		name   string
		center cp.Vector
		vel    cp.Vector
	}{
		{"left_of_map", cp.Vector{X: -100, Y: 10}, cp.Vector{X: -10}},
		{"below_map", cp.Vector{X: 10, Y: 500}, cp.Vector{X: 5, Y: 30}},
		{"leaving_map", cp.Vector{X: 40, Y: 8}, cp.Vector{Y: -60}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := m.Trace(tc.center, tc.vel, cp.Vector{X: 4, Y: 4}, 0)
			if res.Hit || res.Length != 1 {
				t.Fatalf("unexpected hit %+v", res)
			}
			if !vecNear(res.Pos, tc.center.Add(tc.vel), eps) {
				t.Fatalf("pos %v want %v", res.Pos, tc.center.Add(tc.vel))
			}
		})
	}
}

func TestTraceRotatedShapeStopsAtWall(t *testing.T) {
	var wall []image.Point
	for y := 0; y < 10; y++ {
		wall = append(wall, image.Pt(5, y))
	}
	m := newMap(t, 10, 10, wall...)

	// a 45° square reaches the wall with its right vertex first
	center := cp.Vector{X: 60, Y: 40}
	size := cp.Vector{X: 8, Y: 8}
	vel := cp.Vector{X: 40}
	res := m.Trace(center, vel, size, math.Pi/4)

	reach := 4 * math.Sqrt2
	want := (80 - (center.X + reach)) / vel.X
	if !res.Hit || !near(res.Length, want, 1e-6) {
		t.Fatalf("got %+v want length %v", res, want)
	}
	if !vecNear(res.Normal, cp.Vector{X: -1}, 1e-6) {
		t.Fatalf("normal %v want (-1,0)", res.Normal)
	}
	if !near(res.Pos.X+reach, 80, 1e-6) || !near(res.Pos.Y, 40, eps) {
		t.Fatalf("vertex not flush with wall: pos %v", res.Pos)
	}
}

func lowestPoint(center, size cp.Vector, angle float64) float64 {
	shape := geom.SatRect{Pos: center, HalfSize: size.Mult(0.5), Angle: angle}
	low := math.Inf(-1)
	for _, v := range shape.Vertices() {
		low = math.Max(low, v.Y)
	}
	return low
}

func TestTraceRotatedShapeOnFlatFloor(t *testing.T) {
	floor := make([]image.Point, 0, 10)
	for x := 0; x < 10; x++ {
		floor = append(floor, image.Pt(x, 8))
	}
	m := newMap(t, 10, 10, floor...)
	size := cp.Vector{X: 20, Y: 10}
	angle := math.Pi / 3
	reach := lowestPoint(cp.Vector{}, size, angle)

	t.Run("lands_flush", func(t *testing.T) {
		center := cp.Vector{X: 60, Y: 100}
		vel := cp.Vector{X: 20, Y: 40}
		res := m.Trace(center, vel, size, angle)

		want := (128 - (center.Y + reach)) / vel.Y
		if !res.Hit || !near(res.Length, want, 1e-9) {
			t.Fatalf("got %+v want length %v", res, want)
		}
		if !vecNear(res.Normal, cp.Vector{Y: -1}, 1e-12) {
			t.Fatalf("normal %v want (0,-1)", res.Normal)
		}
		if res.TilePos != image.Pt(4, 8) {
			t.Fatalf("tile %v want (4,8)", res.TilePos)
		}
		if low := lowestPoint(res.Pos, size, angle); !near(low, 128, 1e-9) {
			t.Fatalf("lowest vertex at %v, want flush with 128", low)
		}
	})

	resting := cp.Vector{X: 60, Y: 128 - reach}

	t.Run("slides_while_resting", func(t *testing.T) {
		vel := cp.Vector{X: 10}
		res := m.Trace(resting, vel, size, angle)
		if res.Hit || res.Length != 1 {
			t.Fatalf("resting shape must slide freely, got %+v", res)
		}
		if !vecNear(res.Pos, resting.Add(vel), 1e-9) {
			t.Fatalf("pos %v want %v", res.Pos, resting.Add(vel))
		}
	})

	t.Run("pressed_into_floor", func(t *testing.T) {
		res := m.Trace(resting, cp.Vector{X: 10, Y: 5}, size, angle)
		if !res.Hit || !near(res.Length, 0, 1e-9) {
			t.Fatalf("expected immediate hit, got %+v", res)
		}
		if !vecNear(res.Normal, cp.Vector{Y: -1}, 1e-12) {
			t.Fatalf("normal %v want (0,-1)", res.Normal)
		}
	})

	t.Run("lifts_off_when_embedded", func(t *testing.T) {
		sunk := resting.Add(cp.Vector{Y: 0.5})
		vel := cp.Vector{X: 4, Y: -3}
		res := m.Trace(sunk, vel, size, angle)
		if res.Hit || res.Length != 1 {
			t.Fatalf("moving out of the floor must not be blocked, got %+v", res)
		}
	})
}

func TestTraceSlopedHitTakesOneMoreStep(t *testing.T) {
	// A 45° square moving right. Its upper edge reaches a tile in the
	// leading column after 10px, but its right vertex reaches a tile one
	// column further after only 6px, and that column is only walked on the
	// following step.
	edgeTile := image.Pt(5, 3)
	vertexTile := image.Pt(6, 5)
	size := cp.Vector{X: 48, Y: 48}
	reach := 24 * math.Sqrt2
	center := cp.Vector{X: 90 - reach, Y: 84}
	vel := cp.Vector{X: 16}

	cases := []struct {
		name       string
		solid      []image.Point
		wantLength float64
		wantNormal cp.Vector
		wantTile   image.Point
	}{
		{"edge_only", []image.Point{edgeTile}, 0.625, cp.Vector{X: -math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, edgeTile},
		{"vertex_only", []image.Point{vertexTile}, 0.375, cp.Vector{X: -1}, vertexTile},
		{"closer_hit_one_column_later", []image.Point{edgeTile, vertexTile}, 0.375, cp.Vector{X: -1}, vertexTile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMap(t, 10, 10, tc.solid...)
			res := m.Trace(center, vel, size, math.Pi/4)
			if !res.Hit || !near(res.Length, tc.wantLength, 1e-9) {
				t.Fatalf("got %+v want length %v", res, tc.wantLength)
			}
			if !vecNear(res.Normal, tc.wantNormal, 1e-9) {
				t.Fatalf("normal %v want %v", res.Normal, tc.wantNormal)
			}
			if res.TilePos != tc.wantTile {
				t.Fatalf("tile %v want %v", res.TilePos, tc.wantTile)
			}
		})
	}
}
