package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/config"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/physics"
	"github.com/milk9111/impact2d/scene"
)

// contactFrames is how long a contact normal stays on screen.
const contactFrames = 20

type contact struct {
	pos    cp.Vector
	normal cp.Vector
	ttl    int
	tile   bool
}

type Game struct {
	scene   *scene.Scene
	watcher *config.Watcher

	paused      bool
	step        bool
	showNormals bool
	showBounds  bool

	contacts []contact
}

func NewGame(s *scene.Scene, watcher *config.Watcher) *Game {
	g := &Game{scene: s, watcher: watcher, showNormals: true}
	g.observe()
	return g
}

func (g *Game) observe() {
	eng := g.scene.Engine
	eng.Observer = func(cmd command.Command) {
		if cmd.Kind != command.Collide {
			return
		}
		tr, ok := ecs.Get(eng.World, cmd.Ent, component.TransformComponent.Kind())
		if !ok {
			return
		}
		g.contacts = append(g.contacts, contact{pos: tr.Pos, normal: cmd.Normal, ttl: contactFrames, tile: cmd.Trace != nil})
	}
}

func (g *Game) worldSize() (float64, float64) {
	if m := g.scene.Engine.CollisionMap(); m != nil {
		b := m.Bounds()
		return b.X, b.Y
	}
	return 320, 240
}

func (g *Game) Update() error {
	g.pollWatcher()
	g.handleInput()

	if !g.paused || g.step {
		tps := ebiten.TPS()
		if tps <= 0 {
			tps = g.scene.Config.TicksPerSecond
		}
		g.scene.Engine.Update(1 / float64(tps))
		g.step = false
	}

	live := g.contacts[:0]
	for _, c := range g.contacts {
		c.ttl--
		if c.ttl > 0 {
			live = append(live, c)
		}
	}
	g.contacts = live
	return nil
}

func (g *Game) handleInput() {
	eng := g.scene.Engine
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod):
		g.step = true
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		if eng.SweepAxis() == physics.SweepX {
			eng.SetSweepAxis(physics.SweepY)
		} else {
			eng.SetSweepAxis(physics.SweepX)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.showNormals = !g.showNormals
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.showBounds = !g.showBounds
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		eng.Debug = !eng.Debug
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reload("manual reload")
	}

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		eng.TimeScale = max(0, eng.TimeScale-0.01)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		eng.TimeScale = min(4, eng.TimeScale+0.01)
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("watch: %v", err)
		default:
			return
		}
	}
}

func (g *Game) reload(path string) {
	if err := g.scene.HandleChange(path); err != nil {
		log.Printf("reload %s: %v", path, err)
		return
	}
	g.contacts = g.contacts[:0]
	g.observe()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return g.worldSize()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// watchDirs lists the content directories that exist next to the binary.
func watchDirs(configPath string) []string {
	dirs := []string{"levels", "prefabs", filepath.Join("prefabs", "scripts")}
	if configPath != "" {
		dirs = append(dirs, filepath.Dir(configPath))
	}
	out := dirs[:0]
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}
