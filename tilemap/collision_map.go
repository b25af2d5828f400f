package tilemap

import (
	"errors"
	"fmt"
	"image"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/geom"
)

// ErrInvalidMap is returned when map dimensions and tile data disagree.
var ErrInvalidMap = errors.New("tilemap: invalid collision map")

// CollisionRule decides whether the tile at a position blocks movement.
type CollisionRule interface {
	IsCollide(m *CollisionMap, tile image.Point) bool
}

// CollisionMap is a static grid of tile ids. It is loaded once per level and
// never mutated while the simulation runs.
type CollisionMap struct {
	Name     string
	Size     image.Point // in tiles
	TileSize float64
	Data     []uint16 // row major, Size.X*Size.Y entries
	Rule     CollisionRule
}

// NewCollisionMap validates the dimensions and returns a map using
// DefaultRule.
func NewCollisionMap(name string, size image.Point, tileSize float64, data []uint16) (*CollisionMap, error) {
	if size.X < 0 || size.Y < 0 {
		return nil, fmt.Errorf("tilemap: map %q size %v: %w", name, size, ErrInvalidMap)
	}
	if tileSize <= 0 {
		return nil, fmt.Errorf("tilemap: map %q tile size %v: %w", name, tileSize, ErrInvalidMap)
	}
	if len(data) != size.X*size.Y {
		return nil, fmt.Errorf("tilemap: map %q has %d tiles, want %d: %w", name, len(data), size.X*size.Y, ErrInvalidMap)
	}
	return &CollisionMap{
		Name:     name,
		Size:     size,
		TileSize: tileSize,
		Data:     data,
		Rule:     DefaultRule{},
	}, nil
}

// Get returns the tile id at a tile position. Positions outside the map
// report false.
func (m *CollisionMap) Get(tile image.Point) (uint16, bool) {
	if m == nil || tile.X < 0 || tile.Y < 0 || tile.X >= m.Size.X || tile.Y >= m.Size.Y {
		return 0, false
	}
	idx := tile.Y*m.Size.X + tile.X
	if idx >= len(m.Data) {
		return 0, false
	}
	return m.Data[idx], true
}

// IsCollide reports whether the tile blocks movement under the map's rule.
func (m *CollisionMap) IsCollide(tile image.Point) bool {
	if m == nil {
		return false
	}
	rule := m.Rule
	if rule == nil {
		rule = DefaultRule{}
	}
	return rule.IsCollide(m, tile)
}

// SetRule swaps the collision rule. Call it between frames only.
func (m *CollisionMap) SetRule(rule CollisionRule) {
	if m == nil {
		return
	}
	m.Rule = rule
}

// Bounds returns the map extent in world units.
func (m *CollisionMap) Bounds() cp.Vector {
	if m == nil {
		return cp.Vector{}
	}
	return cp.Vector{X: m.TileSize * float64(m.Size.X), Y: m.TileSize * float64(m.Size.Y)}
}

// TileAt returns the tile position containing a world position.
func (m *CollisionMap) TileAt(pos cp.Vector) image.Point {
	return floorTile(pos, m.TileSize)
}

// TileRect returns the world-space rect covered by a tile.
func (m *CollisionMap) TileRect(tile image.Point) geom.Rect {
	lo := cp.Vector{X: float64(tile.X) * m.TileSize, Y: float64(tile.Y) * m.TileSize}
	return geom.Rect{Min: lo, Max: lo.Add(cp.Vector{X: m.TileSize, Y: m.TileSize})}
}
