// Package layout materializes named layouts into live windows and keeps
// them reconciled across layout switches and terminal resizes.
package layout

import (
	"log"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/strnglp/ProfanityFE/internal/window"
)

// PromptKey is the identity key of the indicator that shows the prompt
// next to the command line.
const PromptKey = "prompt"

// Spec describes one window of a layout.
type Spec struct {
	Class      window.Class `yaml:"class"`
	Value      string       `yaml:"value"`
	Label      string       `yaml:"label,omitempty"`
	FG         []string     `yaml:"fg,omitempty"`
	BG         []string     `yaml:"bg,omitempty"`
	BufferSize int          `yaml:"buffer-size,omitempty"`
	Timestamp  bool         `yaml:"timestamp,omitempty"`

	window.Geometry `yaml:",inline"`
}

// Streams splits a text window's value into its stream ids.
func (s Spec) Streams() []string {
	var out []string
	for _, id := range strings.Split(s.Value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// Layout is a named list of window specs.
type Layout struct {
	Name    string `yaml:"-"`
	Windows []Spec `yaml:"windows"`
}

// Manager owns the live windows.
type Manager struct {
	timers window.CountdownSource

	current Layout
	lines   int
	cols    int

	windows []window.Window
	byKey   map[string]window.Window
	streams map[string]*window.Text
	command *window.Command

	promptLabel string
	hasPrompt   bool

	scroll *window.Text
}

// NewManager creates an empty manager. Countdown windows read their
// values from timers.
func NewManager(timers window.CountdownSource) *Manager {
	return &Manager{
		timers:  timers,
		byKey:   make(map[string]window.Window),
		streams: make(map[string]*window.Text),
		command: window.NewCommand("command"),
	}
}

// Load switches to layout l at the given terminal size, reusing windows
// whose identity survives.
func (m *Manager) Load(l Layout, lines, cols int) {
	m.current = l
	m.lines, m.cols = lines, cols
	m.reconcile()
}

// Resize re-places the current layout for a new terminal size.
func (m *Manager) Resize(lines, cols int) {
	m.lines, m.cols = lines, cols
	m.reconcile()
}

// Size returns the terminal size the layout was last placed for.
func (m *Manager) Size() (lines, cols int) { return m.lines, m.cols }

// LayoutName is the name of the loaded layout.
func (m *Manager) LayoutName() string { return m.current.Name }

// Eval evaluates expr against the current terminal size. Errors are
// logged and yield 0.
func (m *Manager) Eval(expr string) int {
	if strings.TrimSpace(expr) == "" {
		return 0
	}
	v, err := Eval(expr, m.lines, m.cols)
	if err != nil {
		log.Printf("[WARN] layout: %v", err)
		return 0
	}
	return v
}

func (m *Manager) rect(g window.Geometry) window.Rect {
	return window.Rect{
		Height: m.Eval(g.Height),
		Width:  m.Eval(g.Width),
		Top:    m.Eval(g.Top),
		Left:   m.Eval(g.Left),
	}
}

func (m *Manager) fits(class window.Class, r window.Rect) bool {
	if r.Height <= 0 || r.Width <= 0 {
		return false
	}
	if r.Top < 0 || r.Top >= m.lines || r.Left < 0 || r.Left >= m.cols {
		return false
	}
	return class != window.ClassText || r.Width > 1
}

func (m *Manager) reconcile() {
	prev := m.byKey
	var prevOrder []*window.Text
	for _, w := range m.windows {
		if t, ok := w.(*window.Text); ok {
			prevOrder = append(prevOrder, t)
		}
	}
	m.byKey = make(map[string]window.Window)
	m.streams = make(map[string]*window.Text)
	m.windows = nil

	for _, spec := range m.current.Windows {
		r := m.rect(spec.Geometry)
		if !m.fits(spec.Class, r) {
			continue
		}

		var w window.Window
		switch spec.Class {
		case window.ClassCommand:
			w = m.command
		case window.ClassText:
			w = m.text(spec, prev, prevOrder)
		case window.ClassIndicator, window.ClassProgress, window.ClassCountdown:
			if _, dup := m.byKey[spec.Value]; dup {
				log.Printf("[WARN] layout %s: duplicate window %q", m.current.Name, spec.Value)
				continue
			}
			w = m.status(spec, prev)
		default:
			log.Printf("[WARN] layout %s: unknown window class %q", m.current.Name, spec.Class)
			continue
		}
		if w == nil {
			continue
		}
		w.SetGeometry(spec.Geometry)
		w.Place(r)
		m.windows = append(m.windows, w)
		if w != window.Window(m.command) {
			m.byKey[w.Key()] = w
		}
	}

	for _, w := range prev {
		w.Close()
	}
	m.hasPrompt = m.byKey[PromptKey] != nil
	if m.hasPrompt && m.promptLabel != "" {
		m.fitPrompt()
	}
	if m.scroll != nil && m.scroll.Closed() {
		m.scroll = nil
	}
}

// text reuses the first previous text window, in layout order, that
// shares a stream with spec.
func (m *Manager) text(spec Spec, prev map[string]window.Window, order []*window.Text) window.Window {
	streams := spec.Streams()
	if len(streams) == 0 {
		return nil
	}
	for _, s := range streams {
		if _, taken := m.streams[s]; taken {
			log.Printf("[WARN] layout %s: stream %q already has a window", m.current.Name, s)
			return nil
		}
	}

	var reuse *window.Text
	for _, t := range order {
		if prev[t.Key()] != window.Window(t) || !overlaps(t.Streams, streams) {
			continue
		}
		reuse = t
		delete(prev, t.Key())
		break
	}
	if reuse == nil {
		reuse = window.NewText(spec.Value, streams, spec.BufferSize)
	}
	reuse.Rebind(spec.Value, streams)
	if spec.BufferSize > 0 {
		reuse.MaxBuffer = spec.BufferSize
	}
	reuse.Timestamp = spec.Timestamp
	for _, s := range streams {
		m.streams[s] = reuse
	}
	return reuse
}

func (m *Manager) status(spec Spec, prev map[string]window.Window) window.Window {
	if w, ok := prev[spec.Value]; ok && w.Class() == spec.Class {
		delete(prev, spec.Value)
		switch v := w.(type) {
		case *window.Indicator:
			v.Label, v.FG, v.BG = spec.Label, spec.FG, spec.BG
		case *window.Progress:
			v.Label, v.FG, v.BG = spec.Label, spec.FG, spec.BG
		case *window.Countdown:
			v.Label, v.FG, v.BG = spec.Label, spec.FG, spec.BG
		}
		return w
	}
	switch spec.Class {
	case window.ClassIndicator:
		return window.NewIndicator(spec.Value, spec.Label, spec.FG, spec.BG)
	case window.ClassProgress:
		return window.NewProgress(spec.Value, spec.Label, spec.FG, spec.BG)
	default:
		return window.NewCountdown(spec.Value, spec.Label, spec.FG, spec.BG, m.timers)
	}
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// SetPrompt records the live prompt label and resizes the prompt
// indicator to its width, shifting the command window by the same
// amount so the two stay adjacent.
func (m *Manager) SetPrompt(label string) {
	m.promptLabel = label
	if m.hasPrompt {
		m.fitPrompt()
	}
}

func (m *Manager) fitPrompt() {
	prompt, ok := m.byKey[PromptKey].(*window.Indicator)
	if !ok {
		return
	}
	pr := m.rect(prompt.Geometry())
	width := runewidth.StringWidth(m.promptLabel)
	diff := width - pr.Width
	pr.Width = width
	prompt.Place(pr)
	prompt.SetLabel(m.promptLabel)

	if !m.placed(m.command) {
		return
	}
	cr := m.rect(m.command.Geometry())
	cr.Left += diff
	cr.Width -= diff
	if cr.Width < 1 {
		cr.Width = 1
	}
	m.command.Place(cr)
}

func (m *Manager) placed(w window.Window) bool {
	for _, x := range m.windows {
		if x == w {
			return true
		}
	}
	return false
}

// Windows returns the live windows in layout order.
func (m *Manager) Windows() []window.Window { return m.windows }

// Window returns a live window by identity key.
func (m *Manager) Window(key string) window.Window { return m.byKey[key] }

// Stream returns the text window fed by stream id, or nil.
func (m *Manager) Stream(id string) *window.Text { return m.streams[id] }

// Indicator returns the live indicator with key, or nil.
func (m *Manager) Indicator(key string) *window.Indicator {
	w, _ := m.byKey[key].(*window.Indicator)
	return w
}

// Progress returns the live gauge with key, or nil.
func (m *Manager) Progress(key string) *window.Progress {
	w, _ := m.byKey[key].(*window.Progress)
	return w
}

// Countdown returns the live countdown with key, or nil.
func (m *Manager) Countdown(key string) *window.Countdown {
	w, _ := m.byKey[key].(*window.Countdown)
	return w
}

// Command returns the process-wide command window.
func (m *Manager) Command() *window.Command { return m.command }

// TextWindows returns the live text windows in layout order.
func (m *Manager) TextWindows() []*window.Text {
	var out []*window.Text
	for _, w := range m.windows {
		if t, ok := w.(*window.Text); ok {
			out = append(out, t)
		}
	}
	return out
}

// ScrollWindow is the text window the scroll keys act on. It starts on
// the main window when there is one.
func (m *Manager) ScrollWindow() *window.Text {
	if m.scroll == nil {
		if m.scroll = m.streams["main"]; m.scroll == nil {
			if texts := m.TextWindows(); len(texts) > 0 {
				m.scroll = texts[0]
			}
		}
	}
	return m.scroll
}

// NextScrollWindow rotates the scroll target to the next text window.
func (m *Manager) NextScrollWindow() *window.Text {
	texts := m.TextWindows()
	cur := m.ScrollWindow()
	for i, t := range texts {
		if t == cur {
			m.scroll = texts[(i+1)%len(texts)]
			break
		}
	}
	return m.scroll
}
