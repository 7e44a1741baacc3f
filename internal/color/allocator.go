// Package color maps 24-bit hex colours onto the terminal's bounded set
// of colour registers and colour pairs.
//
// Both registries recycle ids in allocation order: when every id is in
// use, the id that was allocated longest ago is reprogrammed, even if it
// was looked up a moment ago. Cells already drawn with a recycled id
// change colour on their next redraw; that is accepted.
package color

import (
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Programmer writes colour registers and pairs to the terminal.
// Channel values are in the curses range 0..1000.
type Programmer interface {
	InitColor(id, r, g, b int) error
	InitPair(id, fg, bg int) error
}

// Capacity returns the number of colour registers and colour pairs to
// use for a terminal colour profile.
func Capacity(p termenv.Profile) (colors, pairs int) {
	switch p {
	case termenv.TrueColor, termenv.ANSI256:
		return 256, 32767
	case termenv.ANSI:
		return 16, 256
	default:
		return 8, 64
	}
}

// Allocator hands out colour register ids and pair ids.
// It is not safe for concurrent use; the render pipeline owns it.
type Allocator struct {
	prog Programmer

	defaultFG string
	defaultBG string

	colorByCode map[string]int
	codeBySlot  map[int]string
	colorOrder  []int

	pairByColors map[int]map[int]int
	colorsByPair map[int][2]int
	pairOrder    []int
}

// NewAllocator seeds the free lists with colour ids 0..colors-1 and pair
// ids 1..pairs. Empty fg/bg codes requested later resolve to defaultFG
// and defaultBG.
func NewAllocator(colors, pairs int, prog Programmer, defaultFG, defaultBG string) *Allocator {
	if colors < 1 {
		colors = 1
	}
	if pairs < 1 {
		pairs = 1
	}
	a := &Allocator{
		prog:         prog,
		defaultFG:    Normalize(defaultFG),
		defaultBG:    Normalize(defaultBG),
		colorByCode:  make(map[string]int),
		codeBySlot:   make(map[int]string),
		colorOrder:   make([]int, 0, colors),
		pairByColors: make(map[int]map[int]int),
		colorsByPair: make(map[int][2]int),
		pairOrder:    make([]int, 0, pairs),
	}
	for id := 0; id < colors; id++ {
		a.colorOrder = append(a.colorOrder, id)
	}
	for id := 1; id <= pairs; id++ {
		a.pairOrder = append(a.pairOrder, id)
	}
	return a
}

// Normalize lowercases a hex code and strips a leading '#'.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(code), "#"))
}

// Color returns the register id holding code, programming a recycled
// register on a miss.
func (a *Allocator) Color(code string) int {
	code = Normalize(code)
	if id, ok := a.colorByCode[code]; ok {
		return id
	}

	id := a.colorOrder[0]
	a.colorOrder = append(a.colorOrder[1:], id)

	if old, ok := a.codeBySlot[id]; ok {
		delete(a.colorByCode, old)
		a.evictPairsUsing(id)
	}

	r, g, b, err := Channels(code)
	if err != nil {
		log.Printf("[WARN] color: %v", err)
	}
	if a.prog != nil {
		if err := a.prog.InitColor(id, r, g, b); err != nil {
			log.Printf("[ERROR] color: programming register %d: %v", id, err)
		}
	}

	a.colorByCode[code] = id
	a.codeBySlot[id] = code
	return id
}

// Pair returns the pair id for the fg/bg combination. Empty codes use
// the allocator defaults.
func (a *Allocator) Pair(fg, bg string) int {
	if fg == "" {
		fg = a.defaultFG
	}
	if bg == "" {
		bg = a.defaultBG
	}
	fgID := a.Color(fg)
	bgID := a.Color(bg)
	// Resolving bg may have recycled the register fg just landed in.
	if cur, ok := a.colorByCode[Normalize(fg)]; !ok || cur != fgID {
		fgID = a.Color(fg)
	}

	if byBG, ok := a.pairByColors[fgID]; ok {
		if id, ok := byBG[bgID]; ok {
			return id
		}
	}

	id := a.pairOrder[0]
	a.pairOrder = append(a.pairOrder[1:], id)

	if old, ok := a.colorsByPair[id]; ok {
		if byBG, ok := a.pairByColors[old[0]]; ok {
			delete(byBG, old[1])
			if len(byBG) == 0 {
				delete(a.pairByColors, old[0])
			}
		}
	}

	if a.prog != nil {
		if err := a.prog.InitPair(id, fgID, bgID); err != nil {
			log.Printf("[ERROR] color: programming pair %d: %v", id, err)
		}
	}

	if a.pairByColors[fgID] == nil {
		a.pairByColors[fgID] = make(map[int]int)
	}
	a.pairByColors[fgID][bgID] = id
	a.colorsByPair[id] = [2]int{fgID, bgID}
	return id
}

// evictPairsUsing drops every pair lookup that references colour id.
// The pair ids stay where they are in the allocation order.
func (a *Allocator) evictPairsUsing(id int) {
	for pair, cs := range a.colorsByPair {
		if cs[0] != id && cs[1] != id {
			continue
		}
		if byBG, ok := a.pairByColors[cs[0]]; ok {
			delete(byBG, cs[1])
			if len(byBG) == 0 {
				delete(a.pairByColors, cs[0])
			}
		}
		delete(a.colorsByPair, pair)
	}
}

// Refresh reprograms every live colour register from its mapping.
func (a *Allocator) Refresh() {
	if a.prog == nil {
		return
	}
	for id, code := range a.codeBySlot {
		r, g, b, _ := Channels(code)
		if err := a.prog.InitColor(id, r, g, b); err != nil {
			log.Printf("[ERROR] color: reprogramming register %d: %v", id, err)
		}
	}
}

// LiveColors returns the number of live colour mappings.
func (a *Allocator) LiveColors() int { return len(a.colorByCode) }

// LivePairs returns the number of live pair mappings.
func (a *Allocator) LivePairs() int { return len(a.colorsByPair) }

// Channels converts a 6-digit hex code into curses channel values
// (0..1000). Invalid codes yield black and an error.
func Channels(code string) (r, g, b int, err error) {
	c, err := colorful.Hex("#" + Normalize(code))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parsing colour %q: %w", code, err)
	}
	return scale(c.R), scale(c.G), scale(c.B), nil
}

func scale(v float64) int {
	return int(math.Round(v * 1000))
}
