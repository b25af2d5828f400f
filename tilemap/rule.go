package tilemap

import (
	"fmt"
	"image"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// DefaultRule treats every non-zero tile as solid.
type DefaultRule struct{}

func (DefaultRule) IsCollide(m *CollisionMap, tile image.Point) bool {
	id, ok := m.Get(tile)
	return ok && id != 0
}

// TileSetRule treats only the listed tile ids as solid.
type TileSetRule map[uint16]struct{}

// NewTileSetRule builds a rule from a list of solid ids.
func NewTileSetRule(ids ...uint16) TileSetRule {
	r := make(TileSetRule, len(ids))
	for _, id := range ids {
		r[id] = struct{}{}
	}
	return r
}

func (r TileSetRule) IsCollide(m *CollisionMap, tile image.Point) bool {
	id, ok := m.Get(tile)
	if !ok {
		return false
	}
	_, solid := r[id]
	return solid
}

const scriptRuleDispatch = `
__solid := is_solid(__tile)
`

// ScriptRule asks a tengo script whether a tile id is solid. The script must
// define `is_solid := func(tile) { ... }` returning a truthy value. Results
// are cached per tile id, so the script runs once per distinct id.
type ScriptRule struct {
	compiled *tengo.Compiled
	cache    map[uint16]bool
}

// NewScriptRule compiles the predicate script.
func NewScriptRule(src []byte) (*ScriptRule, error) {
	script := tengo.NewScript(append(append([]byte(nil), src...), scriptRuleDispatch...))
	if err := script.Add("__tile", 0); err != nil {
		return nil, fmt.Errorf("tilemap: bind collision script input: %w", err)
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("tilemap: compile collision script: %w", err)
	}
	return &ScriptRule{compiled: compiled, cache: make(map[uint16]bool)}, nil
}

func (r *ScriptRule) IsCollide(m *CollisionMap, tile image.Point) bool {
	id, ok := m.Get(tile)
	if !ok || r == nil {
		return false
	}
	solid, err := r.IsSolid(id)
	if err != nil {
		log.Printf("tilemap: collision script tile=%d: %v", id, err)
		return false
	}
	return solid
}

// IsSolid evaluates the script for a single tile id.
func (r *ScriptRule) IsSolid(id uint16) (bool, error) {
	if solid, ok := r.cache[id]; ok {
		return solid, nil
	}
	if err := r.compiled.Set("__tile", int(id)); err != nil {
		return false, err
	}
	if err := r.compiled.Run(); err != nil {
		return false, err
	}
	solid := r.compiled.Get("__solid").Bool()
	r.cache[id] = solid
	return solid, nil
}
