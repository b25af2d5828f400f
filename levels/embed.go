package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/tilemap"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

// DefaultTileSize is used when a level file omits tile_size.
const DefaultTileSize = common.TileSize

type Level struct {
	Name     string  `json:"-"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	TileSize float64 `json:"tile_size,omitempty"`
	// Layers holds one flat, row major array of tile ids per layer.
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool   `json:"physics"`
	Color   string `json:"color,omitempty"`
}

// Entity places a prefab in the level. Props are delivered to the spawned
// entity as settings.
type Entity struct {
	Type  string         `json:"type"`
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
	Props map[string]any `json:"props,omitempty"`
}

// Load reads an embedded level. The .json extension is optional.
func Load(name string) (*Level, error) {
	name = cleanLevelName(name)
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", name, err)
	}
	return parse(name, data)
}

// LoadFile reads a level from disk.
func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	return parse(path, data)
}

// Parse decodes and validates level JSON.
func Parse(data []byte) (*Level, error) {
	return parse("", data)
}

func parse(name string, data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal %s: %w", name, err)
	}
	if name != "" {
		lvl.Name = strings.TrimSuffix(filepath.Base(name), ".json")
	}
	if lvl.TileSize == 0 {
		lvl.TileSize = DefaultTileSize
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	if l.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %v", ErrInvalidLevel, l.TileSize)
	}
	if len(l.LayerMeta) > len(l.Layers) {
		return fmt.Errorf("%w: %d layer_meta entries for %d layers", ErrInvalidLevel, len(l.LayerMeta), len(l.Layers))
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %d has %d tiles, want %d", ErrInvalidLevel, i, len(layer), l.Width*l.Height)
		}
		for _, id := range layer {
			if id < 0 || id > math.MaxUint16 {
				return fmt.Errorf("%w: layer %d tile id %d", ErrInvalidLevel, i, id)
			}
		}
	}
	return nil
}

// IsPhysicsLayer reports whether tiles of layer i collide. Layers without
// metadata are decorative.
func (l *Level) IsPhysicsLayer(i int) bool {
	return i >= 0 && i < len(l.LayerMeta) && l.LayerMeta[i].Physics
}

// CollisionMap merges every physics layer into one collision map. Later
// layers win where two of them set the same cell. A nil rule keeps the
// map's default.
func (l *Level) CollisionMap(rule tilemap.CollisionRule) (*tilemap.CollisionMap, error) {
	data := make([]uint16, l.Width*l.Height)
	for i, layer := range l.Layers {
		if !l.IsPhysicsLayer(i) {
			continue
		}
		for idx, id := range layer {
			if id != 0 {
				data[idx] = uint16(id)
			}
		}
	}

	m, err := tilemap.NewCollisionMap(l.Name, image.Pt(l.Width, l.Height), l.TileSize, data)
	if err != nil {
		return nil, fmt.Errorf("levels: collision map %s: %w", l.Name, err)
	}
	if rule != nil {
		m.SetRule(rule)
	}
	return m, nil
}

func cleanLevelName(name string) string {
	name = strings.TrimPrefix(name, "levels/")
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return name
}
