package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/ecs/component"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// EntitySpec describes one spawnable kind of entity.
type EntitySpec struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind"`
	Color     *YAMLColor    `yaml:"color"`
	Damage    float64       `yaml:"damage"`
	TTL       float64       `yaml:"ttl"` // seconds, 0 lives forever
	Transform TransformSpec `yaml:"transform"`
	Physics   PhysicsSpec   `yaml:"physics"`
	Health    *HealthSpec   `yaml:"health"`
}

type TransformSpec struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"` // degrees
	ZIndex   int     `yaml:"z_index"`
}

// PhysicsSpec leaves pointer fields nil to keep the body defaults.
type PhysicsSpec struct {
	Mode            string   `yaml:"mode"`
	Group           []string `yaml:"group"`
	Check           []string `yaml:"check"`
	Mass            *float64 `yaml:"mass"`
	Gravity         *float64 `yaml:"gravity"`
	Restitution     float64  `yaml:"restitution"`
	FrictionX       float64  `yaml:"friction_x"`
	FrictionY       float64  `yaml:"friction_y"`
	VelX            float64  `yaml:"vel_x"`
	VelY            float64  `yaml:"vel_y"`
	MaxGroundNormal *float64 `yaml:"max_ground_normal"`
	MinSlideNormal  *float64 `yaml:"min_slide_normal"`
}

type HealthSpec struct {
	Max float64 `yaml:"max"`
}

// LoadEntitySpec loads and validates a prefab by name. The .yaml extension
// is optional.
func LoadEntitySpec(name string) (EntitySpec, error) {
	spec, err := LoadSpec[EntitySpec](name)
	if err != nil {
		return EntitySpec{}, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(cleanPrefabPath(name), ".yaml")
	}
	if err := spec.Validate(); err != nil {
		return EntitySpec{}, err
	}
	return spec, nil
}

func (s EntitySpec) Validate() error {
	if s.Transform.Width <= 0 || s.Transform.Height <= 0 {
		return fmt.Errorf("%w: %s: size %vx%v", ErrInvalidSpec, s.Name, s.Transform.Width, s.Transform.Height)
	}
	if s.Transform.ScaleX < 0 || s.Transform.ScaleY < 0 {
		return fmt.Errorf("%w: %s: scale %vx%v", ErrInvalidSpec, s.Name, s.Transform.ScaleX, s.Transform.ScaleY)
	}
	if s.Health != nil && s.Health.Max <= 0 {
		return fmt.Errorf("%w: %s: health max %v", ErrInvalidSpec, s.Name, s.Health.Max)
	}
	if s.TTL < 0 {
		return fmt.Errorf("%w: %s: negative ttl", ErrInvalidSpec, s.Name)
	}
	if s.Physics.Mass != nil && *s.Physics.Mass < 0 {
		return fmt.Errorf("%w: %s: negative mass", ErrInvalidSpec, s.Name)
	}
	if _, ok := kinds[s.Kind]; !ok && s.Kind != "" {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidSpec, s.Name, s.Kind)
	}
	_, err := s.Body()
	return err
}

// NewTransform places the spec's rectangle centered on pos.
func (s EntitySpec) NewTransform(pos cp.Vector) component.Transform {
	tr := component.NewTransform(pos, cp.Vector{X: s.Transform.Width, Y: s.Transform.Height})
	if s.Transform.ScaleX != 0 {
		tr.Scale.X = s.Transform.ScaleX
	}
	if s.Transform.ScaleY != 0 {
		tr.Scale.Y = s.Transform.ScaleY
	}
	tr.Angle = s.Transform.Rotation * math.Pi / 180
	tr.ZIndex = s.Transform.ZIndex
	return tr
}

// Body builds the physics body described by the spec.
func (s EntitySpec) Body() (component.PhysicsBody, error) {
	p := s.Physics
	mode, err := component.ParsePhysicsMode(p.Mode)
	if err != nil {
		return component.PhysicsBody{}, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Name, err)
	}
	group, err := component.ParseGroups(p.Group)
	if err != nil {
		return component.PhysicsBody{}, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Name, err)
	}
	check, err := component.ParseGroups(p.Check)
	if err != nil {
		return component.PhysicsBody{}, fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Name, err)
	}

	body := component.NewPhysicsBody(mode)
	body.Group = group
	body.CheckAgainst = check
	body.Restitution = p.Restitution
	body.Friction = cp.Vector{X: p.FrictionX, Y: p.FrictionY}
	body.Vel = cp.Vector{X: p.VelX, Y: p.VelY}
	if p.Mass != nil {
		body.Mass = *p.Mass
	}
	if p.Gravity != nil {
		body.Gravity = *p.Gravity
	}
	if p.MaxGroundNormal != nil {
		body.MaxGroundNormal = *p.MaxGroundNormal
	}
	if p.MinSlideNormal != nil {
		body.MinSlideNormal = *p.MinSlideNormal
	}
	return body, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
