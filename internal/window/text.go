package window

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/strnglp/ProfanityFE/internal/screen"
	"github.com/strnglp/ProfanityFE/internal/span"
)

// DefaultBufferSize is the scrollback length used when a layout does not
// name one.
const DefaultBufferSize = 250

// Text is a scrolling window fed by one or more streams. It keeps
// logical lines and wraps them at draw time, so a resize rewraps the
// whole scrollback. The rightmost column of its rectangle is the
// scrollbar.
type Text struct {
	base

	Streams   []string
	MaxBuffer int
	Timestamp bool

	lines  []span.Line
	scroll int

	// rows holds the wrapped scrollback at wrapWidth; counts[i] is the
	// number of rows lines[i] wrapped into.
	wrapWidth int
	rows      []span.Line
	counts    []int
	dirty     bool
}

// NewText creates a text window bound to streams.
func NewText(key string, streams []string, maxBuffer int) *Text {
	if maxBuffer <= 0 {
		maxBuffer = DefaultBufferSize
	}
	return &Text{
		base:      base{key: key},
		Streams:   streams,
		MaxBuffer: maxBuffer,
		dirty:     true,
	}
}

func (t *Text) Class() Class { return ClassText }

// Place moves the window and its scrollbar together and re-clamps the
// scroll position against the new size.
func (t *Text) Place(r Rect) {
	if r.Width != t.rect.Width {
		t.dirty = true
	}
	t.rect = r
	t.clampScroll()
}

// Rebind renames the window and replaces its stream list, keeping the
// scrollback.
func (t *Text) Rebind(key string, streams []string) {
	t.key = key
	t.Streams = streams
}

// TextWidth is the number of columns available for text.
func (t *Text) TextWidth() int {
	if t.rect.Width <= 1 {
		return 0
	}
	return t.rect.Width - 1
}

// ScrollbarRect is the single column glued to the right edge.
func (t *Text) ScrollbarRect() Rect {
	return Rect{Top: t.rect.Top, Left: t.rect.Left + t.rect.Width - 1, Height: t.rect.Height, Width: 1}
}

// Add appends a line, trimming the oldest lines past MaxBuffer. When the
// view is scrolled back it stays on the same content. Only the new line
// is wrapped unless the width changed since the last wrap.
func (t *Text) Add(line span.Line) {
	line.Spans = span.Clamp(span.Clone(line.Spans), len(line.Text))
	t.lines = append(t.lines, line)
	over := len(t.lines) - t.MaxBuffer
	if over > 0 {
		t.lines = t.lines[over:]
	}

	w := t.TextWidth()
	if t.dirty || w != t.wrapWidth || w <= 0 {
		t.dirty = true
		t.clampScroll()
		return
	}
	added := Wrap(line, w)
	t.rows = append(t.rows, added...)
	t.counts = append(t.counts, len(added))
	if over > 0 {
		drop := 0
		for _, n := range t.counts[:over] {
			drop += n
		}
		t.rows = t.rows[drop:]
		t.counts = t.counts[over:]
	}
	if t.scroll > 0 {
		t.scroll += len(added)
	}
	t.clampScroll()
}

// Clear drops the scrollback.
func (t *Text) Clear() {
	t.lines = nil
	t.rows = nil
	t.counts = nil
	t.scroll = 0
	t.dirty = true
}

// Lines returns the logical scrollback, oldest first.
func (t *Text) Lines() []span.Line { return t.lines }

// Scroll moves the view by n rows; positive n scrolls back in history.
func (t *Text) Scroll(n int) {
	t.scroll += n
	t.clampScroll()
}

// ScrollPage scrolls by one window height in direction dir (+1 back, -1 forward).
func (t *Text) ScrollPage(dir int) {
	page := t.rect.Height - 1
	if page < 1 {
		page = 1
	}
	t.Scroll(dir * page)
}

// ScrollBottom returns the view to the newest line.
func (t *Text) ScrollBottom() { t.scroll = 0 }

// ScrollOffset is the number of rows the view sits above the bottom.
func (t *Text) ScrollOffset() int { return t.scroll }

func (t *Text) wrapped() []span.Line {
	w := t.TextWidth()
	if !t.dirty && w == t.wrapWidth {
		return t.rows
	}
	t.rows = t.rows[:0:0]
	t.counts = t.counts[:0:0]
	if w > 0 {
		for _, l := range t.lines {
			r := Wrap(l, w)
			t.rows = append(t.rows, r...)
			t.counts = append(t.counts, len(r))
		}
	}
	t.wrapWidth = w
	t.dirty = false
	return t.rows
}

func (t *Text) clampScroll() {
	maxScroll := len(t.wrapped()) - t.rect.Height
	if maxScroll < 0 {
		maxScroll = 0
	}
	if t.scroll > maxScroll {
		t.scroll = maxScroll
	}
	if t.scroll < 0 {
		t.scroll = 0
	}
}

func (t *Text) Draw(c *screen.Canvas, colors Colors) {
	r := t.rect
	def := colors.Pair("", "")
	w := t.TextWidth()
	c.Fill(r.Left, r.Top, w, r.Height, def)

	rows := t.wrapped()
	last := len(rows) - t.scroll
	first := last - r.Height
	if first < 0 {
		first = 0
	}
	y := r.Top + r.Height - (last - first)
	for i := first; i < last; i++ {
		drawRow(c, colors, r.Left, y, r.Left+w, rows[i])
		y++
	}
	t.drawScrollbar(c, colors, len(rows))
}

func drawRow(c *screen.Canvas, colors Colors, x, y, maxX int, row span.Line) {
	attrs := span.Resolve(row.Spans, len(row.Text))
	for i, r := range row.Text {
		cw := runewidth.RuneWidth(r)
		if cw == 0 {
			continue
		}
		if x+cw > maxX {
			return
		}
		a := attrs[i]
		cell := screen.Cell{Rune: r, Pair: colors.Pair(a.FG, a.BG), Underline: a.Underline}
		c.Set(x, y, cell)
		if cw == 2 {
			c.Set(x+1, y, screen.Cell{Pair: cell.Pair})
		}
		x += cw
	}
}

func (t *Text) drawScrollbar(c *screen.Canvas, colors Colors, total int) {
	sb := t.ScrollbarRect()
	if sb.Height <= 0 {
		return
	}
	track := colors.Pair("", "")
	for y := 0; y < sb.Height; y++ {
		c.Set(sb.Left, sb.Top+y, screen.Cell{Rune: ' ', Pair: track})
	}
	if total <= sb.Height {
		return
	}
	thumb := sb.Height * sb.Height / total
	if thumb < 1 {
		thumb = 1
	}
	maxScroll := total - sb.Height
	pos := (sb.Height - thumb) * (maxScroll - t.scroll) / maxScroll
	for y := pos; y < pos+thumb && y < sb.Height; y++ {
		c.Set(sb.Left, sb.Top+y, screen.Cell{Rune: ' ', Pair: track, Reverse: true})
	}
}

// Wrap splits a line into rows no wider than width cells, breaking after
// the last space that fits when there is one. Spans are split and
// rebased onto each row.
func Wrap(line span.Line, width int) []span.Line {
	if width <= 0 {
		return nil
	}
	text := line.Text
	if text == "" {
		return []span.Line{{}}
	}
	var out []span.Line
	start := 0
	for start < len(text) {
		end, cells, lastSpace := start, 0, -1
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			cw := runewidth.RuneWidth(r)
			if cells+cw > width {
				break
			}
			cells += cw
			end += size
			if r == ' ' {
				lastSpace = end
			}
		}
		if end == start {
			// A single rune wider than the window.
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		} else if end < len(text) && text[end] != ' ' && lastSpace > start {
			end = lastSpace
		}
		out = append(out, slice(line, start, end))
		start = end
		for start < len(text) && text[start] == ' ' {
			start++
		}
	}
	return out
}

func slice(line span.Line, start, end int) span.Line {
	row := span.Line{Text: strings.TrimRight(line.Text[start:end], " ")}
	if row.Text == "" && end > start {
		row.Text = line.Text[start:end]
	}
	for _, s := range line.Spans {
		if s.End <= start || s.Start >= end {
			continue
		}
		s.Start -= start
		s.End -= start
		row.Spans = append(row.Spans, s)
	}
	row.Spans = span.Clamp(row.Spans, len(row.Text))
	return row
}
