package viz

import (
	"math"
	"strings"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a grid of braille cells addressed in dots: Width*2 by Height*4.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine uses Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PlotOrbits projects each trail onto the XY plane and joins consecutive
// points. Both axes share one scale so orbits keep their shape. Non-finite
// points are skipped.
func PlotOrbits(trails [][]dynamo.Vector, w, h int) *Canvas {
	c := NewCanvas(w, h)

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, trail := range trails {
		for _, p := range trail {
			if !p.IsFinite() {
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		return c
	}

	dotsW, dotsH := float64(w*2-1), float64(h*4-1)
	span := math.Max(maxX-minX, maxY-minY)
	scale := 0.0
	if span > 0 {
		scale = math.Min(dotsW, dotsH) / span
	}
	offX := (dotsW - (maxX-minX)*scale) / 2
	offY := (dotsH - (maxY-minY)*scale) / 2

	project := func(p dynamo.Vector) (int, int) {
		x := offX + (p.X-minX)*scale
		y := dotsH - (offY + (p.Y-minY)*scale)
		return int(math.Round(x)), int(math.Round(y))
	}

	for _, trail := range trails {
		havePrev := false
		var px, py int
		for _, p := range trail {
			if !p.IsFinite() {
				havePrev = false
				continue
			}
			x, y := project(p)
			if havePrev {
				c.DrawLine(px, py, x, y)
			} else {
				c.Set(x, y)
			}
			px, py, havePrev = x, y, true
		}
	}
	return c
}
