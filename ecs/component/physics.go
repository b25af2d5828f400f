package component

import (
	"fmt"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/common"
)

// CollisionLevel orders how strongly an entity takes part in entity vs.
// entity resolution. Comparisons use the enum order.
type CollisionLevel uint8

const (
	LevelNone CollisionLevel = iota
	// LevelLite entities are pushed around by Active and Fixed entities and
	// never push back.
	LevelLite
	// LevelPassive entities move each other only when one side is Active.
	LevelPassive
	LevelActive
	// LevelFixed entities never move during resolution.
	LevelFixed
)

var levelNames = [...]string{"none", "lite", "passive", "active", "fixed"}

func (l CollisionLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("CollisionLevel(%d)", uint8(l))
}

// PhysicsMode says whether an entity moves, collides with the tile grid and
// at which level it collides with other entities.
type PhysicsMode struct {
	Moves bool
	World bool
	Level CollisionLevel
}

var (
	ModeNone    = PhysicsMode{}
	ModeMove    = PhysicsMode{Moves: true}
	ModeWorld   = PhysicsMode{Moves: true, World: true}
	ModeLite    = PhysicsMode{Moves: true, World: true, Level: LevelLite}
	ModePassive = PhysicsMode{Moves: true, World: true, Level: LevelPassive}
	ModeActive  = PhysicsMode{Moves: true, World: true, Level: LevelActive}
	ModeFixed   = PhysicsMode{Moves: true, World: true, Level: LevelFixed}
)

// Normalize applies the implications Level > None => World => Moves.
func (m PhysicsMode) Normalize() PhysicsMode {
	if m.Level > LevelNone {
		m.World = true
	}
	if m.World {
		m.Moves = true
	}
	return m
}

// AtLeast reports whether the mode collides at level l or stronger.
func (m PhysicsMode) AtLeast(l CollisionLevel) bool {
	return m.Level >= l
}

func (m PhysicsMode) String() string {
	switch {
	case m.Level > LevelNone:
		return m.Level.String()
	case m.World:
		return "world"
	case m.Moves:
		return "move"
	}
	return "none"
}

// ParsePhysicsMode maps a preset name to its mode.
func ParsePhysicsMode(s string) (PhysicsMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "move":
		return ModeMove, nil
	case "world":
		return ModeWorld, nil
	case "lite":
		return ModeLite, nil
	case "passive":
		return ModePassive, nil
	case "active":
		return ModeActive, nil
	case "fixed":
		return ModeFixed, nil
	}
	return ModeNone, fmt.Errorf("component: unknown physics mode %q", s)
}

// Group is a bitmask used for touch checks.
type Group uint8

const GroupNone Group = 0

const (
	GroupPlayer Group = 1 << iota
	GroupNPC
	GroupEnemy
	GroupItem
	GroupProjectile
	GroupPickup
	GroupBreakable
)

var groupNames = map[string]Group{
	"player":     GroupPlayer,
	"npc":        GroupNPC,
	"enemy":      GroupEnemy,
	"item":       GroupItem,
	"projectile": GroupProjectile,
	"pickup":     GroupPickup,
	"breakable":  GroupBreakable,
}

// ParseGroups ORs named groups together.
func ParseGroups(names []string) (Group, error) {
	var g Group
	for _, n := range names {
		v, ok := groupNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return GroupNone, fmt.Errorf("component: unknown group %q", n)
		}
		g |= v
	}
	return g, nil
}

// PhysicsBody is the per-entity physics state. It holds no behavior; the
// physics package integrates and resolves it.
type PhysicsBody struct {
	Mode     PhysicsMode
	OnGround bool

	Vel      cp.Vector
	Accel    cp.Vector
	Friction cp.Vector

	// Gravity scales the world gravity. 1.0 = normal gravity.
	Gravity     float64
	Mass        float64
	Restitution float64

	// MaxGroundNormal is the smallest upward normal component that still
	// counts as ground. MinSlideNormal is the threshold above which the body
	// sticks to slopes instead of sliding.
	MaxGroundNormal float64
	MinSlideNormal  float64

	Group        Group
	CheckAgainst Group
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()

// NewPhysicsBody returns a body with the default tuning for mode.
func NewPhysicsBody(mode PhysicsMode) PhysicsBody {
	return PhysicsBody{
		Mode:            mode.Normalize(),
		Gravity:         1,
		Mass:            1,
		MaxGroundNormal: common.DefaultMaxGroundNormal,
		MinSlideNormal:  common.DefaultMinSlideNormal,
	}
}
