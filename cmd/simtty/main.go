// Command simtty runs a level in the terminal.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/config"
	"github.com/milk9111/impact2d/physics"
	"github.com/milk9111/impact2d/scene"
)

type app struct {
	screen  tcell.Screen
	scene   *scene.Scene
	watcher *config.Watcher

	cellW, cellH float64
	paused       bool
	kills        int
	audioInit    bool
}

func newApp(s *scene.Scene, cellW float64) (*app, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	a := &app{screen: screen, scene: s, cellW: cellW, cellH: cellW * 2}
	if err := a.initAudio(); err != nil {
		// Non-fatal, the viewer runs without sound
		log.Printf("audio init failed: %v", err)
	}
	a.observe()
	return a, nil
}

func (a *app) initAudio() error {
	sampleRate := beep.SampleRate(44100)
	err := speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	if err == nil {
		a.audioInit = true
	}
	return err
}

func (a *app) playKillSound() {
	if !a.audioInit {
		return
	}
	sampleRate := beep.SampleRate(44100)
	sine, err := generators.SineTone(sampleRate, 440)
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(40*time.Millisecond), sine))
}

func (a *app) observe() {
	a.scene.Engine.Observer = func(cmd command.Command) {
		if cmd.Kind == command.Kill {
			a.kills++
			a.playKillSound()
		}
	}
}

func (a *app) draw() {
	a.screen.Clear()
	gr := rasterize(a.scene.Engine, a.cellW, a.cellH)
	for y := 0; y < gr.h; y++ {
		for x := 0; x < gr.w; x++ {
			c := gr.at(x, y)
			if c.r == 0 {
				continue
			}
			a.screen.SetContent(x, y+1, c.r, nil, tcell.StyleDefault.Foreground(tcellColor(c.color)))
		}
	}

	eng := a.scene.Engine
	state := "running"
	if a.paused {
		state = "paused"
	}
	status := fmt.Sprintf("%s %s frame=%d t=%.1fs axis=%s entities=%d kills=%d  [space] pause [x] axis [r] reload [esc] quit",
		a.scene.Level.Name, state, eng.Frame(), eng.Time(), eng.SweepAxis(), eng.World.Len(), a.kills)
	for i, r := range status {
		a.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}
	a.screen.Show()
}

func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		eng := a.scene.Engine
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			a.paused = !a.paused
		case 'x':
			if eng.SweepAxis() == physics.SweepX {
				eng.SetSweepAxis(physics.SweepY)
			} else {
				eng.SetSweepAxis(physics.SweepX)
			}
		case 'r':
			a.reload("manual reload")
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *app) reload(path string) {
	if err := a.scene.HandleChange(path); err != nil {
		log.Printf("reload %s: %v", path, err)
		return
	}
	a.observe()
}

func (a *app) run() {
	tps := a.scene.Config.TicksPerSecond
	ticker := time.NewTicker(time.Second / time.Duration(tps))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- a.screen.PollEvent()
		}
	}()

	var watchEvents <-chan string
	if a.watcher != nil {
		watchEvents = a.watcher.Events
	}

	last := time.Now()
	for {
		select {
		case ev := <-eventChan:
			if !a.handleInput(ev) {
				return
			}
		case path, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			a.reload(path)
		case now := <-ticker.C:
			if !a.paused {
				a.scene.Engine.Update(now.Sub(last).Seconds())
			}
			last = now
			a.draw()
		}
	}
}

func (a *app) cleanup() {
	if a.audioInit {
		speaker.Close()
	}
	a.screen.Fini()
}

func tcellColor(c color.Color) tcell.Color {
	if c == nil {
		return tcell.ColorDefault
	}
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func main() {
	configPath := flag.String("config", "", "engine config YAML (embedded defaults if empty)")
	levelName := flag.String("level", "", "level name in levels/ or path to a level file")
	cellW := flag.Float64("cell", 8, "world pixels per terminal column")
	logPath := flag.String("log", "simtty.log", "log file, the terminal is taken by the viewer")
	watch := flag.Bool("watch", true, "reload config, levels, prefabs and scripts on change")
	flag.Parse()

	if f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	s, err := scene.Load(scene.Options{ConfigPath: *configPath, Level: *levelName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load scene: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(s, *cellW)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.cleanup()

	if *watch {
		if w, err := config.NewWatcher("levels", "prefabs"); err == nil {
			a.watcher = w
			defer w.Close()
		} else {
			log.Printf("watch disabled: %v", err)
		}
	}

	a.run()
}
