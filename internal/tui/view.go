package tui

import "github.com/strnglp/ProfanityFE/internal/screen"

// View draws every live window onto a fresh canvas. Colour pairs are
// resolved through the allocator, so a frame may reprogram registers.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	c := screen.NewCanvas(m.width, m.height, m.colors.Pair("", ""))
	for _, w := range m.layout.Windows() {
		w.Draw(c, m.colors)
	}
	return c.Render(m.palette)
}
