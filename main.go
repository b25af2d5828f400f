package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/impact2d/config"
	"github.com/milk9111/impact2d/scene"
)

func main() {
	configPath := flag.String("config", "", "engine config YAML (embedded defaults if empty)")
	levelName := flag.String("level", "", "level name in levels/ or path to a level file")
	debug := flag.Bool("debug", false, "enable debug logging")
	watch := flag.Bool("watch", true, "reload config, levels, prefabs and scripts on change")
	zoom := flag.Float64("zoom", 3, "window pixels per world pixel")
	flag.Parse()

	s, err := scene.Load(scene.Options{ConfigPath: *configPath, Level: *levelName, Debug: *debug})
	if err != nil {
		log.Fatal(err)
	}

	var watcher *config.Watcher
	if *watch {
		watcher, err = config.NewWatcher(watchDirs(*configPath)...)
		if err != nil {
			log.Printf("watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	game := NewGame(s, watcher)
	w, h := game.worldSize()
	scale := *zoom
	ebiten.SetWindowSize(int(w*scale), int(h*scale))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("impact2d")
	ebiten.SetTPS(s.Config.TicksPerSecond)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
