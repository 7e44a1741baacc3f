package screen

import (
	"io"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func plainPalette() *Palette {
	return NewPalette(lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii)))
}

func TestPrintClipsAtMax(t *testing.T) {
	c := NewCanvas(6, 1, 0)
	next := c.Print(1, 0, 4, "abcdef", 0)
	if next != 4 {
		t.Errorf("expected print to stop at column 4, got %d", next)
	}
	if got := c.Row(0); got != " abc  " {
		t.Errorf("unexpected row %q", got)
	}
}

func TestPrintWideRune(t *testing.T) {
	c := NewCanvas(4, 1, 0)
	c.Print(0, 0, 4, "日x", 0)
	if c.At(1, 0).Rune != 0 {
		t.Errorf("expected continuation cell after wide rune")
	}
	if got := c.Row(0); got != "日x " {
		t.Errorf("unexpected row %q", got)
	}
}

func TestRenderPlainProfile(t *testing.T) {
	p := plainPalette()
	if err := p.InitColor(0, 1000, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.InitColor(1, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.InitPair(1, 0, 1); err != nil {
		t.Fatal(err)
	}

	c := NewCanvas(3, 2, 1)
	c.Print(0, 0, 3, "hi", 1)
	c.Print(0, 1, 3, "yo!", 2)
	if got := c.Render(p); got != "hi \nyo!" {
		t.Errorf("unexpected render %q", got)
	}
}

func TestPaletteHexFollowsReprogramming(t *testing.T) {
	p := plainPalette()
	p.InitColor(3, 0, 1000, 0)
	p.InitColor(4, 0, 0, 0)
	p.InitPair(7, 3, 4)
	if fg, _ := p.Hex(7); fg != "#00ff00" {
		t.Fatalf("expected #00ff00, got %s", fg)
	}
	p.InitColor(3, 0, 0, 1000)
	if fg, _ := p.Hex(7); fg != "#0000ff" {
		t.Errorf("pair should follow its register, got %s", fg)
	}
}

func TestInitColorRejectsOutOfRange(t *testing.T) {
	if err := plainPalette().InitColor(0, 1001, 0, 0); err == nil {
		t.Error("expected range error")
	}
}
