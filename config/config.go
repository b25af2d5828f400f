package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/physics"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidSweepAxis = errors.New("config: invalid sweep axis")
	ErrInvalidConfig    = errors.New("config: invalid engine config")
)

//go:embed engine.yaml
var defaultYAML []byte

// Engine holds the frame driver settings.
type Engine struct {
	Gravity        float64 `yaml:"gravity"`
	SweepAxis      string  `yaml:"sweep_axis"`
	MaxTick        float64 `yaml:"max_tick"`
	TimeScale      float64 `yaml:"time_scale"`
	TicksPerSecond int     `yaml:"ticks_per_second"`
	Level          string  `yaml:"level"`
	Debug          bool    `yaml:"debug"`
}

// Default returns the built-in settings.
func Default() Engine {
	return Engine{
		Gravity:        common.Gravity,
		SweepAxis:      "x",
		MaxTick:        common.MaxTick,
		TimeScale:      1,
		TicksPerSecond: 60,
	}
}

// Embedded parses the engine.yaml shipped with the binary.
func Embedded() (Engine, error) {
	return Parse(defaultYAML)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Engine, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Engine{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Load reads and parses a config file.
func Load(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Engine{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and the sweep axis.
func (c Engine) Validate() error {
	if _, err := c.Axis(); err != nil {
		return err
	}
	if c.MaxTick <= 0 {
		return fmt.Errorf("%w: max_tick %v must be positive", ErrInvalidConfig, c.MaxTick)
	}
	if c.TimeScale < 0 {
		return fmt.Errorf("%w: time_scale %v is negative", ErrInvalidConfig, c.TimeScale)
	}
	if c.TicksPerSecond <= 0 {
		return fmt.Errorf("%w: ticks_per_second %d must be positive", ErrInvalidConfig, c.TicksPerSecond)
	}
	return nil
}

// Axis parses SweepAxis.
func (c Engine) Axis() (physics.SweepAxis, error) {
	switch strings.ToLower(strings.TrimSpace(c.SweepAxis)) {
	case "", "x":
		return physics.SweepX, nil
	case "y":
		return physics.SweepY, nil
	}
	return physics.SweepX, fmt.Errorf("%w: %q", ErrInvalidSweepAxis, c.SweepAxis)
}
