package screen

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the terminal's colour register file. It implements
// color.Programmer: the allocator programs registers and pairs, and
// Render looks them up when each frame is drawn.
type Palette struct {
	mu       sync.RWMutex
	renderer *lipgloss.Renderer
	colors   map[int]lipgloss.Color
	pairs    map[int][2]int
	styles   map[styleKey]lipgloss.Style
}

type styleKey struct {
	pair      int
	underline bool
	reverse   bool
}

// NewPalette creates an empty register file rendering through r.
// A nil renderer uses lipgloss's default renderer.
func NewPalette(r *lipgloss.Renderer) *Palette {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Palette{
		renderer: r,
		colors:   make(map[int]lipgloss.Color),
		pairs:    make(map[int][2]int),
		styles:   make(map[styleKey]lipgloss.Style),
	}
}

// InitColor programs register id with curses channel values (0..1000).
func (p *Palette) InitColor(id, r, g, b int) error {
	if r < 0 || r > 1000 || g < 0 || g > 1000 || b < 0 || b > 1000 {
		return fmt.Errorf("channel out of range: %d,%d,%d", r, g, b)
	}
	c := colorful.Color{R: float64(r) / 1000, G: float64(g) / 1000, B: float64(b) / 1000}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.colors[id] = lipgloss.Color(c.Hex())
	clear(p.styles)
	return nil
}

// InitPair binds pair id to two registers.
func (p *Palette) InitPair(id, fg, bg int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs[id] = [2]int{fg, bg}
	clear(p.styles)
	return nil
}

// Hex returns the current value of the registers behind pair id.
func (p *Palette) Hex(pair int) (fg, bg string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cs, ok := p.pairs[pair]
	if !ok {
		return "", ""
	}
	return string(p.colors[cs[0]]), string(p.colors[cs[1]])
}

// Style returns the lipgloss style for a pair id.
func (p *Palette) Style(pair int, underline, reverse bool) lipgloss.Style {
	key := styleKey{pair: pair, underline: underline, reverse: reverse}

	p.mu.RLock()
	st, ok := p.styles[key]
	p.mu.RUnlock()
	if ok {
		return st
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	st = p.renderer.NewStyle()
	if cs, ok := p.pairs[pair]; ok {
		if fg, ok := p.colors[cs[0]]; ok {
			st = st.Foreground(fg)
		}
		if bg, ok := p.colors[cs[1]]; ok {
			st = st.Background(bg)
		}
	}
	if underline {
		st = st.Underline(true)
	}
	if reverse {
		st = st.Reverse(true)
	}
	p.styles[key] = st
	return st
}
