package window

import (
	"github.com/mattn/go-runewidth"

	"github.com/strnglp/ProfanityFE/internal/screen"
)

// Editor is the input-editing state the command window shows.
// Position is a rune index into Value.
type Editor interface {
	Value() string
	Position() int
}

// Command is the single input line. It is created once per process and
// only ever re-placed; the editing state itself lives in the Editor.
type Command struct {
	base

	editor Editor
	offset int
}

func NewCommand(key string) *Command {
	return &Command{base: base{key: key}}
}

func (w *Command) Class() Class { return ClassCommand }

// Attach sets the editor the window renders.
func (w *Command) Attach(e Editor) { w.editor = e }

// Close is a no-op: the command window outlives every layout.
func (w *Command) Close() {}

func (w *Command) Draw(c *screen.Canvas, colors Colors) {
	r := w.rect
	def := colors.Pair("", "")
	c.Fill(r.Left, r.Top, r.Width, r.Height, def)
	if w.editor == nil || r.Width <= 0 {
		return
	}
	runes := []rune(w.editor.Value())
	pos := w.editor.Position()
	if pos > len(runes) {
		pos = len(runes)
	}

	// Scroll horizontally so the cursor stays visible.
	if pos < w.offset {
		w.offset = pos
	}
	for w.offset < pos && runewidth.StringWidth(string(runes[w.offset:pos])) >= r.Width {
		w.offset++
	}
	if w.offset > len(runes) {
		w.offset = len(runes)
	}

	x := r.Left
	for i := w.offset; i < len(runes); i++ {
		cw := runewidth.RuneWidth(runes[i])
		if x+cw > r.Left+r.Width {
			break
		}
		c.Set(x, r.Top, screen.Cell{Rune: runes[i], Pair: def, Reverse: i == pos})
		x += cw
	}
	if pos == len(runes) && x < r.Left+r.Width {
		c.Set(x, r.Top, screen.Cell{Rune: ' ', Pair: def, Reverse: true})
	}
}
