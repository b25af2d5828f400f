package main

import (
	"image"
	"image/color"
	"math"

	"github.com/milk9111/impact2d/ecs"
	"github.com/milk9111/impact2d/ecs/component"
	"github.com/milk9111/impact2d/engine"
	"github.com/milk9111/impact2d/prefabs"
)

type cell struct {
	r     rune
	color color.Color
}

// grid is a character raster of the world. Each cell covers cellW by cellH
// world pixels.
type grid struct {
	w, h         int
	cellW, cellH float64
	cells        []cell
}

func newGrid(w, h int, cellW, cellH float64) *grid {
	return &grid{w: w, h: h, cellW: cellW, cellH: cellH, cells: make([]cell, w*h)}
}

func (g *grid) at(x, y int) cell {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return cell{}
	}
	return g.cells[y*g.w+x]
}

func (g *grid) set(x, y int, c cell) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = c
}

var (
	solidColor  = color.NRGBA{R: 0x5a, G: 0x6e, B: 0x8c, A: 0xff}
	markerColor = color.NRGBA{R: 0x3b, G: 0x42, B: 0x52, A: 0xff}
)

// rasterize draws the collision map and every body of eng into a grid
// sized to the map.
func rasterize(eng *engine.Engine, cellW, cellH float64) *grid {
	m := eng.CollisionMap()
	if m == nil {
		return newGrid(0, 0, cellW, cellH)
	}
	bounds := m.Bounds()
	gr := newGrid(int(math.Ceil(bounds.X/cellW)), int(math.Ceil(bounds.Y/cellH)), cellW, cellH)

	for y := 0; y < gr.h; y++ {
		for x := 0; x < gr.w; x++ {
			center := image.Pt(int(math.Floor((float64(x)+0.5)*cellW/m.TileSize)), int(math.Floor((float64(y)+0.5)*cellH/m.TileSize)))
			id, _ := m.Get(center)
			switch {
			case id == 0:
			case m.IsCollide(center):
				gr.set(x, y, cell{r: '█', color: solidColor})
			default:
				gr.set(x, y, cell{r: '░', color: markerColor})
			}
		}
	}

	w := eng.World
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.PhysicsBodyComponent.Kind(), func(ent ecs.Entity, tr *component.Transform, body *component.PhysicsBody) {
		var clr color.Color = color.White
		if tint, ok := prefabs.Tint(w, ent); ok {
			clr = tint
		}
		r := tr.Bounds()
		x0, y0 := int(math.Floor(r.Min.X/cellW)), int(math.Floor(r.Min.Y/cellH))
		x1, y1 := int(math.Ceil(r.Max.X/cellW))-1, int(math.Ceil(r.Max.Y/cellH))-1
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				gr.set(x, y, cell{r: levelRune(body.Mode.Level), color: clr})
			}
		}
	})
	return gr
}

func levelRune(l component.CollisionLevel) rune {
	switch l {
	case component.LevelLite:
		return 'o'
	case component.LevelPassive:
		return 'p'
	case component.LevelActive:
		return 'A'
	case component.LevelFixed:
		return '#'
	}
	return '*'
}
