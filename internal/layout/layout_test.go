package layout

import (
	"testing"

	"github.com/strnglp/ProfanityFE/internal/window"
)

func TestEval(t *testing.T) {
	cases := map[string]int{
		"lines":            40,
		"cols-25":          95,
		"(lines-2)/2":      19,
		"-3+cols":          117,
		"2*(cols - lines)": 160,
		"  7 ":             7,
		"--4":              4,
	}
	for expr, want := range cases {
		got, err := Eval(expr, 40, 120)
		if err != nil {
			t.Errorf("%q: unexpected error %v", expr, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %d, got %d", expr, want, got)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	for _, expr := range []string{"lines/0", "rows", "(1+2", "1 2", "", "3*"} {
		if _, err := Eval(expr, 40, 120); err == nil {
			t.Errorf("%q: expected error", expr)
		}
	}
}

func geo(h, w, top, left string) window.Geometry {
	return window.Geometry{Height: h, Width: w, Top: top, Left: left}
}

func testLayout() Layout {
	return Layout{Name: "default", Windows: []Spec{
		{Class: window.ClassText, Value: "main", Geometry: geo("lines-2", "cols", "0", "0")},
		{Class: window.ClassText, Value: "death,logons", Geometry: geo("5", "20", "0", "cols-20")},
		{Class: window.ClassIndicator, Value: "prompt", Label: ">", Geometry: geo("1", "1", "lines-1", "0")},
		{Class: window.ClassCommand, Value: "command", Geometry: geo("1", "cols-1", "lines-1", "1")},
		{Class: window.ClassProgress, Value: "health", Label: "health", Geometry: geo("1", "10", "lines-2", "0")},
	}}
}

func TestLoadMaterializes(t *testing.T) {
	m := NewManager(nil)
	m.Load(testLayout(), 40, 120)

	if got := len(m.Windows()); got != 5 {
		t.Fatalf("expected 5 windows, got %d", got)
	}
	main := m.Stream("main")
	if main == nil {
		t.Fatal("main stream has no window")
	}
	if r := main.Rect(); r.Height != 38 || r.Width != 120 {
		t.Errorf("unexpected main rect %+v", r)
	}
	if m.Stream("logons") != m.Stream("death") {
		t.Error("death and logons should share a window")
	}
	if m.Progress("health") == nil || m.Indicator("prompt") == nil {
		t.Error("missing status windows")
	}
}

func TestLoadSkipsOutOfBounds(t *testing.T) {
	l := Layout{Windows: []Spec{
		{Class: window.ClassText, Value: "main", Geometry: geo("10", "10", "0", "0")},
		{Class: window.ClassText, Value: "far", Geometry: geo("1", "10", "lines", "0")},
		{Class: window.ClassIndicator, Value: "zero", Geometry: geo("0", "3", "0", "0")},
		{Class: window.ClassText, Value: "thin", Geometry: geo("3", "1", "0", "0")},
		{Class: window.ClassIndicator, Value: "bad", Geometry: geo("1/0", "3", "0", "0")},
	}}
	m := NewManager(nil)
	m.Load(l, 24, 80)
	if got := len(m.Windows()); got != 1 {
		t.Errorf("expected only main, got %d windows", got)
	}
}

func TestReloadIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	m.Load(testLayout(), 40, 120)
	before := map[string]window.Window{}
	for _, w := range m.Windows() {
		before[w.Key()] = w
	}

	m.Load(testLayout(), 40, 120)
	for _, w := range m.Windows() {
		if before[w.Key()] != w {
			t.Errorf("window %q was recreated", w.Key())
		}
		if w.Closed() {
			t.Errorf("window %q closed on unchanged reload", w.Key())
		}
	}
}

func TestReloadClosesDroppedWindows(t *testing.T) {
	m := NewManager(nil)
	m.Load(testLayout(), 40, 120)
	health := m.Progress("health")
	main := m.Stream("main")
	cmd := m.Command()

	next := testLayout()
	next.Windows = next.Windows[:4]
	next.Windows[0].Value = "main,thoughts"
	m.Load(next, 40, 120)

	if !health.Closed() {
		t.Error("dropped gauge should be closed")
	}
	if m.Stream("main") != main || m.Stream("thoughts") != main {
		t.Error("main window should be reused by stream overlap")
	}
	if main.Closed() {
		t.Error("reused window must not be closed")
	}
	if m.Command() != cmd {
		t.Error("command window must never be recreated")
	}
}

func TestResizeReplacesAndKeepsPromptAdjacent(t *testing.T) {
	m := NewManager(nil)
	m.Load(testLayout(), 40, 120)
	m.SetPrompt("R>")

	p := m.Indicator("prompt").Rect()
	c := m.Command().Rect()
	if p.Width != 2 || c.Left != 2 || c.Width != 118 {
		t.Fatalf("prompt %+v command %+v", p, c)
	}

	m.Resize(30, 100)
	p = m.Indicator("prompt").Rect()
	c = m.Command().Rect()
	if p.Top != 29 || p.Width != 2 {
		t.Errorf("prompt not re-placed: %+v", p)
	}
	if c.Top != 29 || c.Left != p.Left+p.Width || c.Width != 98 {
		t.Errorf("command not adjacent after resize: %+v", c)
	}
	if r := m.Stream("main").Rect(); r.Height != 28 || r.Width != 100 {
		t.Errorf("main not re-placed: %+v", r)
	}
}

func TestScrollWindowRotation(t *testing.T) {
	m := NewManager(nil)
	m.Load(testLayout(), 40, 120)
	if m.ScrollWindow() != m.Stream("main") {
		t.Fatal("scroll target should start on main")
	}
	if m.NextScrollWindow() != m.Stream("death") {
		t.Error("expected rotation to the death window")
	}
	if m.NextScrollWindow() != m.Stream("main") {
		t.Error("expected rotation back to main")
	}
}
