package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/impact2d/common"
	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/prefabs"
	"golang.org/x/image/colornames"
)

const normalLength = 8

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	g.drawTiles(screen)
	g.drawBodies(screen)
	if g.showNormals {
		g.drawContacts(screen)
	}
	g.drawStatus(screen)
}

func (g *Game) drawTiles(screen *ebiten.Image) {
	lvl := g.scene.Level
	m := g.scene.Engine.CollisionMap()
	if lvl == nil || m == nil {
		return
	}
	ts := float32(m.TileSize)

	for i, layer := range lvl.Layers {
		if lvl.IsPhysicsLayer(i) {
			continue
		}
		for idx, id := range layer {
			if id == 0 {
				continue
			}
			x, y := idx%lvl.Width, idx/lvl.Width
			vector.FillRect(screen, float32(x)*ts, float32(y)*ts, ts, ts, colornames.Darkslategray, false)
		}
	}

	for y := 0; y < m.Size.Y; y++ {
		for x := 0; x < m.Size.X; x++ {
			tile := image.Pt(x, y)
			id, _ := m.Get(tile)
			if id == 0 {
				continue
			}
			px, py := float32(x)*ts, float32(y)*ts
			if m.IsCollide(tile) {
				vector.FillRect(screen, px, py, ts, ts, colornames.Slategray, false)
			} else {
				// painted on a physics layer but not solid under the rule
				vector.StrokeRect(screen, px+1, py+1, ts-2, ts-2, 1, colornames.Dimgray, false)
			}
		}
	}
}

func (g *Game) drawBodies(screen *ebiten.Image) {
	w := g.scene.Engine.World
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(ent ecs.Entity, tr *component.Transform, body *component.PhysicsBody) {
		clr := levelColor(body.Mode.Level)
		if tint, ok := prefabs.Tint(w, ent); ok {
			clr = tint
		}

		verts := tr.Shape().Vertices()
		for i := range verts {
			a, b := verts[i], verts[(i+1)%len(verts)]
			vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, clr, true)
		}

		if g.showBounds {
			r := tr.Bounds()
			size := r.Size()
			vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(size.X), float32(size.Y), 1, colornames.Yellow, false)
		}
		if body.OnGround {
			vector.FillCircle(screen, float32(tr.Pos.X), float32(tr.Pos.Y), 1.5, colornames.Lime, true)
		}
	})
}

func (g *Game) drawContacts(screen *ebiten.Image) {
	for _, c := range g.contacts {
		clr := color.NRGBA(colornames.Orangered)
		if c.tile {
			clr = color.NRGBA(colornames.Deepskyblue)
		}
		// fade out over the contact's lifetime
		clr.A = uint8(common.Lerp(0, 255, float64(c.ttl)/contactFrames))
		end := c.pos.Add(c.normal.Mult(normalLength))
		vector.StrokeLine(screen, float32(c.pos.X), float32(c.pos.Y), float32(end.X), float32(end.Y), 1, clr, true)
	}
}

func (g *Game) drawStatus(screen *ebiten.Image) {
	eng := g.scene.Engine
	state := "running"
	if g.paused {
		state = "paused"
	}
	msg := fmt.Sprintf("%s  frame %d  t=%.2fs  scale %.2f  axis %s  entities %d  FPS %.0f\n"+
		"space pause  . step  x axis  n normals  b bounds  d debug  r reload  <- -> time scale",
		state, eng.Frame(), eng.Time(), eng.TimeScale, eng.SweepAxis(), eng.World.Len(), ebiten.ActualFPS())
	if m := eng.CollisionMap(); m != nil {
		cx, cy := ebiten.CursorPosition()
		tile := m.TileAt(cp.Vector{X: float64(cx), Y: float64(cy)})
		if id, ok := m.Get(tile); ok {
			msg += fmt.Sprintf("\ntile %d,%d id=%d solid=%t", tile.X, tile.Y, id, m.IsCollide(tile))
		}
	}
	ebitenutil.DebugPrint(screen, msg)
}

func levelColor(l component.CollisionLevel) color.Color {
	switch l {
	case component.LevelLite:
		return colornames.Lightskyblue
	case component.LevelPassive:
		return colornames.Khaki
	case component.LevelActive:
		return colornames.Lightgreen
	case component.LevelFixed:
		return colornames.Lightcoral
	}
	return colornames.Gray
}
