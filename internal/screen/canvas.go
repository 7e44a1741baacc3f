// Package screen is the cell-level terminal primitive the windows draw
// into. A Canvas is a grid of cells holding a rune and a colour pair id;
// Render turns it into the string bubbletea writes to the terminal,
// resolving pair ids through the Palette at render time.
package screen

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell is one terminal cell. A zero Rune marks the right half of a wide
// character and is skipped when rendering.
type Cell struct {
	Rune      rune
	Pair      int
	Underline bool
	Reverse   bool
}

// Canvas is a fixed-size grid of cells.
type Canvas struct {
	width  int
	height int
	cells  []Cell
}

// NewCanvas allocates a canvas filled with blanks in pair id.
func NewCanvas(width, height, pair int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{width: width, height: height, cells: make([]Cell, width*height)}
	c.Fill(0, 0, width, height, pair)
	return c
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Set writes one cell; out of bounds writes are dropped.
func (c *Canvas) Set(x, y int, cell Cell) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y*c.width+x] = cell
}

// At returns the cell at x, y.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return Cell{}
	}
	return c.cells[y*c.width+x]
}

// Fill paints a rectangle with blanks in pair.
func (c *Canvas) Fill(x, y, w, h, pair int) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			c.Set(col, row, Cell{Rune: ' ', Pair: pair})
		}
	}
}

// Print writes s starting at x, y using pair and clips at maxX
// (exclusive). It returns the column after the last written cell.
func (c *Canvas) Print(x, y, maxX int, s string, pair int) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > maxX {
			break
		}
		c.Set(x, y, Cell{Rune: r, Pair: pair})
		if w == 2 {
			c.Set(x+1, y, Cell{Pair: pair})
		}
		x += w
	}
	return x
}

// Row returns the plain text of row y without styling.
func (c *Canvas) Row(y int) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		r := c.At(x, y).Rune
		if r == 0 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render produces the styled terminal string, one line per row, joining
// runs of cells with identical styling into a single lipgloss render.
func (c *Canvas) Render(p *Palette) string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		var cur Cell
		started := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			out.WriteString(p.Style(cur.Pair, cur.Underline, cur.Reverse).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			cell := c.cells[y*c.width+x]
			if cell.Rune == 0 {
				continue
			}
			if !started || cell.Pair != cur.Pair || cell.Underline != cur.Underline || cell.Reverse != cur.Reverse {
				flush()
				cur = cell
				started = true
			}
			run.WriteRune(cell.Rune)
		}
		flush()
	}
	return out.String()
}
