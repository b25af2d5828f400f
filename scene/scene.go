// Package scene assembles a running simulation from a config file, a level
// and the prefabs it places.
package scene

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/milk9111/impact2d/config"
	"github.com/milk9111/impact2d/engine"
	"github.com/milk9111/impact2d/levels"
	"github.com/milk9111/impact2d/prefabs"
)

// DefaultRule is the tile rule script used when Options.Rule is empty.
const DefaultRule = "solid"

type Options struct {
	// ConfigPath is a YAML engine config on disk. Empty uses the embedded
	// defaults.
	ConfigPath string
	// Level overrides the level named by the config. It may be a path on
	// disk or the name of an embedded level.
	Level string
	Rule  string
	Debug bool
}

type Scene struct {
	Options Options
	Config  config.Engine
	Level   *levels.Level
	Engine  *engine.Engine
}

func Load(opts Options) (*Scene, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.Debug = true
	}

	name := opts.Level
	if name == "" {
		name = cfg.Level
	}
	lvl, err := loadLevel(name)
	if err != nil {
		return nil, err
	}

	ruleName := opts.Rule
	if ruleName == "" {
		ruleName = DefaultRule
	}
	rule, err := prefabs.LoadRule(ruleName)
	if err != nil {
		return nil, err
	}

	g, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := prefabs.Populate(g, lvl, rule); err != nil {
		return nil, fmt.Errorf("scene: populate %s: %w", lvl.Name, err)
	}

	return &Scene{Options: opts, Config: cfg, Level: lvl, Engine: g}, nil
}

// HandleChange reacts to a file reported by config.Watcher. A change to the
// engine config is applied in place; any other change rebuilds the scene.
// On error the scene keeps running unchanged.
func (s *Scene) HandleChange(path string) error {
	if s.Options.ConfigPath != "" && samePath(path, s.Options.ConfigPath) {
		cfg, err := loadConfig(s.Options.ConfigPath)
		if err != nil {
			return err
		}
		if s.Options.Debug {
			cfg.Debug = true
		}
		if cfg.Level == s.Config.Level {
			if err := s.Engine.Apply(cfg); err != nil {
				return err
			}
			s.Config = cfg
			log.Printf("scene: applied %s", path)
			return nil
		}
	}

	next, err := Load(s.Options)
	if err != nil {
		return err
	}
	if s.Engine.Observer != nil {
		next.Engine.Observer = s.Engine.Observer
	}
	*s = *next
	log.Printf("scene: reloaded after change to %s", path)
	return nil
}

func loadConfig(path string) (config.Engine, error) {
	if path == "" {
		return config.Embedded()
	}
	return config.Load(path)
}

func loadLevel(name string) (*levels.Level, error) {
	if name == "" {
		return nil, fmt.Errorf("scene: no level given")
	}
	// Prefer files on disk so edits are picked up by hot reload.
	candidates := []string{name, filepath.Join("levels", name), filepath.Join("levels", name+".json")}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return levels.LoadFile(path)
		}
	}
	return levels.Load(name)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
