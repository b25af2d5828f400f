// Command simrun steps a level headlessly and reports what happened.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/command"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/scene"
)

type entityState struct {
	Ent      ecs.Entity
	Mode     component.PhysicsMode
	Pos      cp.Vector
	Vel      cp.Vector
	OnGround bool
	Health   float64
}

type report struct {
	Frames   uint64
	Time     float64
	Counts   map[command.Kind]int
	Entities []entityState
}

// simulate steps s for ticks frames of dt seconds each.
func simulate(s *scene.Scene, ticks int, dt float64) report {
	rep := report{Counts: make(map[command.Kind]int)}
	eng := s.Engine
	eng.Observer = func(cmd command.Command) { rep.Counts[cmd.Kind]++ }

	for i := 0; i < ticks; i++ {
		eng.Update(dt)
	}

	rep.Frames = eng.Frame()
	rep.Time = eng.Time()
	ecs.ForEach2(eng.World, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(ent ecs.Entity, tr *component.Transform, body *component.PhysicsBody) {
		st := entityState{Ent: ent, Mode: body.Mode, Pos: tr.Pos, Vel: body.Vel, OnGround: body.OnGround, Health: -1}
		if h, ok := ecs.Get(eng.World, ent, component.HealthComponent.Kind()); ok {
			st.Health = h.Value
		}
		rep.Entities = append(rep.Entities, st)
	})
	sort.Slice(rep.Entities, func(i, j int) bool { return rep.Entities[i].Ent < rep.Entities[j].Ent })
	return rep
}

func (r report) write(w io.Writer) {
	fmt.Fprintf(w, "frames=%d time=%.3fs entities=%d\n", r.Frames, r.Time, len(r.Entities))

	kinds := make([]command.Kind, 0, len(r.Counts))
	for k := range r.Counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-8s %d\n", k, r.Counts[k])
	}

	for _, st := range r.Entities {
		fmt.Fprintf(w, "  %s %-12s pos=(%.2f, %.2f) vel=(%.2f, %.2f) ground=%t", st.Ent, st.Mode, st.Pos.X, st.Pos.Y, st.Vel.X, st.Vel.Y, st.OnGround)
		if st.Health >= 0 {
			fmt.Fprintf(w, " health=%.1f", st.Health)
		}
		fmt.Fprintln(w)
	}
}

func main() {
	configPath := flag.String("config", "", "engine config YAML (embedded defaults if empty)")
	levelName := flag.String("level", "", "level name in levels/ or path to a level file")
	ticks := flag.Int("ticks", 600, "frames to simulate")
	dt := flag.Float64("dt", 0, "seconds per frame (1/ticks_per_second if zero)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	s, err := scene.Load(scene.Options{ConfigPath: *configPath, Level: *levelName, Debug: *debug})
	if err != nil {
		log.Fatal(err)
	}

	step := *dt
	if step <= 0 {
		step = 1 / float64(s.Config.TicksPerSecond)
	}

	log.Printf("simrun: level=%s ticks=%d dt=%.4f axis=%s", s.Level.Name, *ticks, step, s.Engine.SweepAxis())
	simulate(s, *ticks, step).write(os.Stdout)
}
