package window

import (
	"fmt"
	"strings"
	"testing"

	"github.com/strnglp/ProfanityFE/internal/screen"
	"github.com/strnglp/ProfanityFE/internal/span"
)

// fakeColors hands out a stable id per fg/bg combination.
type fakeColors struct {
	ids map[string]int
}

func newFakeColors() *fakeColors { return &fakeColors{ids: map[string]int{}} }

func (f *fakeColors) Pair(fg, bg string) int {
	k := fg + "/" + bg
	if id, ok := f.ids[k]; ok {
		return id
	}
	id := len(f.ids) + 1
	f.ids[k] = id
	return id
}

func TestWrapBreaksAtSpace(t *testing.T) {
	rows := Wrap(span.Line{Text: "hello world foo"}, 11)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Text != "hello world" || rows[1].Text != "foo" {
		t.Errorf("unexpected rows %q %q", rows[0].Text, rows[1].Text)
	}
}

func TestWrapSplitsSpans(t *testing.T) {
	line := span.Line{Text: "abcdefgh", Spans: []span.Span{{Start: 2, End: 6, FG: "ff0000"}}}
	rows := Wrap(line, 4)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if s := rows[0].Spans; len(s) != 1 || s[0].Start != 2 || s[0].End != 4 {
		t.Errorf("row 0 spans: %+v", s)
	}
	if s := rows[1].Spans; len(s) != 1 || s[0].Start != 0 || s[0].End != 2 {
		t.Errorf("row 1 spans: %+v", s)
	}
}

func TestTextBufferBounded(t *testing.T) {
	w := NewText("main", []string{"main"}, 3)
	w.Place(Rect{Height: 2, Width: 10})
	for i := 0; i < 5; i++ {
		w.Add(span.Line{Text: fmt.Sprintf("line %d", i)})
	}
	lines := w.Lines()
	if len(lines) != 3 || lines[0].Text != "line 2" {
		t.Errorf("expected last three lines, got %+v", lines)
	}
}

func TestTextWrapsIncrementally(t *testing.T) {
	w := NewText("main", []string{"main"}, 20)
	w.Place(Rect{Height: 5, Width: 9})

	full := func() []span.Line {
		var rows []span.Line
		for _, l := range w.Lines() {
			rows = append(rows, Wrap(l, w.TextWidth())...)
		}
		return rows
	}
	check := func(stage string) {
		t.Helper()
		got, want := w.wrapped(), full()
		if len(got) != len(want) {
			t.Fatalf("%s: %d rows, want %d", stage, len(got), len(want))
		}
		for i := range got {
			if got[i].Text != want[i].Text {
				t.Fatalf("%s: row %d = %q, want %q", stage, i, got[i].Text, want[i].Text)
			}
		}
		if len(w.counts) != len(w.Lines()) {
			t.Fatalf("%s: %d row counts for %d lines", stage, len(w.counts), len(w.Lines()))
		}
	}

	for i := 0; i < 50; i++ {
		w.Add(span.Line{Text: strings.Repeat("ab ", i%6) + fmt.Sprint(i)})
	}
	check("after trimming")
	if w.dirty {
		t.Error("adding at a stable width should not force a rewrap")
	}

	w.Place(Rect{Height: 5, Width: 6})
	w.Add(span.Line{Text: "after resize"})
	check("after resize")
}

func TestTextDrawBottomAligned(t *testing.T) {
	w := NewText("main", []string{"main"}, 10)
	w.Place(Rect{Height: 3, Width: 6})
	w.Add(span.Line{Text: "one"})
	w.Add(span.Line{Text: "two"})

	c := screen.NewCanvas(6, 3, 0)
	w.Draw(c, newFakeColors())
	if got := strings.TrimRight(c.Row(0), " "); got != "" {
		t.Errorf("top row should be blank, got %q", got)
	}
	if got := c.Row(2); !strings.HasPrefix(got, "two") {
		t.Errorf("bottom row should hold newest line, got %q", got)
	}
}

func TestTextScrollClampsAndKeepsView(t *testing.T) {
	w := NewText("main", []string{"main"}, 50)
	w.Place(Rect{Height: 2, Width: 10})
	for i := 0; i < 5; i++ {
		w.Add(span.Line{Text: fmt.Sprintf("l%d", i)})
	}
	w.Scroll(100)
	if w.ScrollOffset() != 3 {
		t.Fatalf("scroll should clamp to 3, got %d", w.ScrollOffset())
	}
	w.Scroll(-1)
	w.Add(span.Line{Text: "new"})
	if w.ScrollOffset() != 3 {
		t.Errorf("scrolled-back view should follow its content, got %d", w.ScrollOffset())
	}
	w.ScrollBottom()
	if w.ScrollOffset() != 0 {
		t.Errorf("expected bottom, got %d", w.ScrollOffset())
	}
}

func TestTextScrollbarMovesWithWindow(t *testing.T) {
	w := NewText("main", []string{"main"}, 10)
	w.Place(Rect{Top: 1, Left: 4, Height: 5, Width: 20})
	if sb := w.ScrollbarRect(); sb.Left != 23 || sb.Top != 1 || sb.Height != 5 {
		t.Fatalf("unexpected scrollbar %+v", sb)
	}
	w.Place(Rect{Top: 0, Left: 0, Height: 3, Width: 8})
	if sb := w.ScrollbarRect(); sb.Left != 7 || sb.Height != 3 {
		t.Errorf("scrollbar did not follow window: %+v", sb)
	}
}

func TestIndicatorColoursByState(t *testing.T) {
	colors := newFakeColors()
	ind := NewIndicator("compass:n", "n", []string{"333333", "ffff00"}, nil)
	ind.Place(Rect{Height: 1, Width: 1})
	if !ind.Update(1) {
		t.Fatal("expected change")
	}
	if ind.Update(1) {
		t.Error("same value should report no change")
	}
	c := screen.NewCanvas(1, 1, 0)
	ind.Draw(c, colors)
	if got := c.At(0, 0).Pair; got != colors.Pair("ffff00", "") {
		t.Errorf("expected on colour pair, got %d", got)
	}
}

func TestProgressText(t *testing.T) {
	p := NewProgress("health", "health", nil, []string{"004800", "000000"})
	p.Place(Rect{Height: 1, Width: 12})
	p.Update(85, 100)
	c := screen.NewCanvas(12, 1, 0)
	p.Draw(c, newFakeColors())
	if got := c.Row(0); got != "health    85" {
		t.Errorf("unexpected gauge %q", got)
	}
}

type fixedSource struct{ primary, secondary int }

func (f fixedSource) Remaining(string) (int, int, bool) { return f.primary, f.secondary, false }

func TestCountdownZones(t *testing.T) {
	colors := newFakeColors()
	d := NewCountdown("roundtime", "RT", nil, []string{"ff0000", "0000ff", ""}, fixedSource{primary: 2, secondary: 4})
	d.Place(Rect{Height: 1, Width: 6})
	c := screen.NewCanvas(6, 1, 0)
	d.Draw(c, colors)
	red, blue, none := colors.Pair("", "ff0000"), colors.Pair("", "0000ff"), colors.Pair("", "")
	want := []int{red, red, blue, blue, none, none}
	for x, p := range want {
		if got := c.At(x, 0).Pair; got != p {
			t.Errorf("cell %d: expected pair %d, got %d", x, p, got)
		}
	}
	if got := c.Row(0); got != "RT   4" {
		t.Errorf("unexpected countdown text %q", got)
	}
}

type fakeEditor struct {
	value string
	pos   int
}

func (e fakeEditor) Value() string { return e.value }
func (e fakeEditor) Position() int { return e.pos }

func TestCommandKeepsCursorVisible(t *testing.T) {
	w := NewCommand("command")
	w.Place(Rect{Height: 1, Width: 4})
	w.Attach(fakeEditor{value: "abcdefg", pos: 7})
	c := screen.NewCanvas(4, 1, 0)
	w.Draw(c, newFakeColors())
	if got := c.Row(0); got != "efg " {
		t.Errorf("unexpected command row %q", got)
	}
	if !c.At(3, 0).Reverse {
		t.Error("cursor cell should be reversed")
	}
	w.Close()
	if w.Closed() {
		t.Error("command window must survive Close")
	}
}
