// Package window implements the closed set of on-screen window variants:
// scrolling text, indicators, progress gauges, countdowns and the single
// command line. Every variant satisfies Window; class-specific operations
// live on the concrete types.
package window

import (
	"github.com/strnglp/ProfanityFE/internal/screen"
)

// Colors resolves an fg/bg hex pair into a colour pair id. Empty codes
// mean the terminal defaults.
type Colors interface {
	Pair(fg, bg string) int
}

// Rect is a window's live position in cells.
type Rect struct {
	Top    int
	Left   int
	Height int
	Width  int
}

// Geometry holds the unevaluated layout expressions a window was created
// from, kept so the window can be re-placed after a terminal resize.
type Geometry struct {
	Height string `yaml:"height"`
	Width  string `yaml:"width"`
	Top    string `yaml:"top"`
	Left   string `yaml:"left"`
}

// Class names the window variant.
type Class string

const (
	ClassText      Class = "text"
	ClassIndicator Class = "indicator"
	ClassProgress  Class = "progress"
	ClassCountdown Class = "countdown"
	ClassCommand   Class = "command"
)

// Window is the capability every variant shares.
type Window interface {
	Class() Class
	Key() string
	Geometry() Geometry
	SetGeometry(Geometry)
	Rect() Rect
	Place(Rect)
	Draw(c *screen.Canvas, colors Colors)
	Close()
	Closed() bool

	sealed()
}

type base struct {
	key    string
	geo    Geometry
	rect   Rect
	closed bool
}

func (b *base) Key() string            { return b.key }
func (b *base) Geometry() Geometry     { return b.geo }
func (b *base) SetGeometry(g Geometry) { b.geo = g }
func (b *base) Rect() Rect             { return b.rect }
func (b *base) Place(r Rect)           { b.rect = r }
func (b *base) Close()                 { b.closed = true }
func (b *base) Closed() bool           { return b.closed }
func (b *base) sealed()                {}

// pick returns list[i], falling back to the last element, or "" when the
// list is empty.
func pick(list []string, i int) string {
	if len(list) == 0 {
		return ""
	}
	if i < 0 {
		i = 0
	}
	if i >= len(list) {
		i = len(list) - 1
	}
	return list[i]
}
