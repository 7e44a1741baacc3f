package window

import (
	"strconv"

	"github.com/mattn/go-runewidth"

	"github.com/strnglp/ProfanityFE/internal/screen"
)

// Indicator shows a label whose colours are chosen by a small integer
// state: 0 is off, 1 is on, and some indicators (injuries) use more.
type Indicator struct {
	base

	Label string
	FG    []string
	BG    []string

	value int
}

func NewIndicator(key, label string, fg, bg []string) *Indicator {
	return &Indicator{base: base{key: key}, Label: label, FG: fg, BG: bg}
}

func (i *Indicator) Class() Class { return ClassIndicator }

// Update sets the state and reports whether it changed.
func (i *Indicator) Update(v int) bool {
	if v == i.value {
		return false
	}
	i.value = v
	return true
}

// SetLabel replaces the label and reports whether it changed.
func (i *Indicator) SetLabel(label string) bool {
	if label == i.Label {
		return false
	}
	i.Label = label
	return true
}

func (i *Indicator) Value() int { return i.value }

func (i *Indicator) Draw(c *screen.Canvas, colors Colors) {
	r := i.rect
	pair := colors.Pair(pick(i.FG, i.value), pick(i.BG, i.value))
	c.Fill(r.Left, r.Top, r.Width, r.Height, pair)
	c.Print(r.Left, r.Top, r.Left+r.Width, i.Label, pair)
}

// Progress is a current/max gauge drawn as a filled bar under its label.
// FG and BG hold the filled colour first, then the empty colour.
type Progress struct {
	base

	Label string
	FG    []string
	BG    []string

	value int
	max   int
}

func NewProgress(key, label string, fg, bg []string) *Progress {
	return &Progress{base: base{key: key}, Label: label, FG: fg, BG: bg}
}

func (p *Progress) Class() Class { return ClassProgress }

// Update sets current and max and reports whether either changed.
func (p *Progress) Update(value, max int) bool {
	if value == p.value && max == p.max {
		return false
	}
	p.value, p.max = value, max
	return true
}

// Values returns the last current/max pair.
func (p *Progress) Values() (value, max int) { return p.value, p.max }

func (p *Progress) Draw(c *screen.Canvas, colors Colors) {
	r := p.rect
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	filled := 0
	if p.max > 0 {
		filled = r.Width * p.value / p.max
	}
	if filled > r.Width {
		filled = r.Width
	}
	if filled < 0 {
		filled = 0
	}
	on := colors.Pair(pick(p.FG, 0), pick(p.BG, 0))
	off := colors.Pair(pick(p.FG, 1), pick(p.BG, 1))

	text := []rune(gaugeText(p.Label, strconv.Itoa(p.value), r.Width))
	x := 0
	for _, ch := range text {
		pair := off
		if x < filled {
			pair = on
		}
		x = c.Print(r.Left+x, r.Top, r.Left+r.Width, string(ch), pair) - r.Left
	}
	for ; x < r.Width; x++ {
		pair := off
		if x < filled {
			pair = on
		}
		c.Set(r.Left+x, r.Top, screen.Cell{Rune: ' ', Pair: pair})
	}
}

// gaugeText lays out label on the left and value on the right within
// width cells, dropping the label when both do not fit.
func gaugeText(label, value string, width int) string {
	lw, vw := runewidth.StringWidth(label), runewidth.StringWidth(value)
	if lw+vw+1 > width {
		return runewidth.Truncate(value, width, "")
	}
	pad := width - lw - vw
	out := make([]byte, 0, width)
	out = append(out, label...)
	for j := 0; j < pad; j++ {
		out = append(out, ' ')
	}
	return string(append(out, value...))
}

// CountdownSource reports a named timer's remaining whole seconds and
// whether its indicator flag is on.
type CountdownSource interface {
	Remaining(name string) (primary, secondary int, active bool)
}

// Countdown draws a timer as one cell per remaining second. Primary
// seconds use the first colours, seconds left only on the secondary
// end-time use the second, and the rest of the bar the third.
type Countdown struct {
	base

	Label string
	FG    []string
	BG    []string

	src CountdownSource

	primary   int
	secondary int
	active    bool
}

func NewCountdown(key, label string, fg, bg []string, src CountdownSource) *Countdown {
	return &Countdown{base: base{key: key}, Label: label, FG: fg, BG: bg, src: src}
}

func (d *Countdown) Class() Class { return ClassCountdown }

// Refresh re-reads the timer and reports whether the drawn value changes.
func (d *Countdown) Refresh() bool {
	if d.src == nil {
		return false
	}
	p, s, a := d.src.Remaining(d.key)
	if p == d.primary && s == d.secondary && a == d.active {
		return false
	}
	d.primary, d.secondary, d.active = p, s, a
	return true
}

// Values returns the last remaining seconds read by Refresh.
func (d *Countdown) Values() (primary, secondary int) { return d.primary, d.secondary }

func (d *Countdown) Draw(c *screen.Canvas, colors Colors) {
	d.Refresh()
	r := d.rect
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	pairs := [3]int{
		colors.Pair(pick(d.FG, 0), pick(d.BG, 0)),
		colors.Pair(pick(d.FG, 1), pick(d.BG, 1)),
		colors.Pair(pick(d.FG, 2), pick(d.BG, 2)),
	}
	shown := d.primary
	if d.secondary > shown {
		shown = d.secondary
	}
	label := d.Label
	if shown > 0 {
		label = gaugeText(d.Label, strconv.Itoa(shown), r.Width)
	}
	zone := func(x int) int {
		switch {
		case x < d.primary || (d.active && shown == 0):
			return pairs[0]
		case x < d.secondary:
			return pairs[1]
		default:
			return pairs[2]
		}
	}
	x := 0
	for _, ch := range label {
		x = c.Print(r.Left+x, r.Top, r.Left+r.Width, string(ch), zone(x)) - r.Left
	}
	for ; x < r.Width; x++ {
		c.Set(r.Left+x, r.Top, screen.Cell{Rune: ' ', Pair: zone(x)})
	}
}
