package tui

import (
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/strnglp/ProfanityFE/internal/client"
	"github.com/strnglp/ProfanityFE/internal/cmdline"
	"github.com/strnglp/ProfanityFE/internal/color"
	"github.com/strnglp/ProfanityFE/internal/config"
	"github.com/strnglp/ProfanityFE/internal/highlight"
	"github.com/strnglp/ProfanityFE/internal/keys"
	"github.com/strnglp/ProfanityFE/internal/layout"
	"github.com/strnglp/ProfanityFE/internal/parser"
	"github.com/strnglp/ProfanityFE/internal/screen"
	"github.com/strnglp/ProfanityFE/internal/session"
	"github.com/strnglp/ProfanityFE/internal/store"
	"github.com/strnglp/ProfanityFE/internal/stream"
	"github.com/strnglp/ProfanityFE/internal/timer"
	"github.com/strnglp/ProfanityFE/internal/window"
)

// ────────────────────────────────────────────────────────────
// Configuration
// ────────────────────────────────────────────────────────────

// Sender writes a command to the server.
type Sender interface {
	Send(cmd string) error
}

// Config wires a Model to its collaborators.
type Config struct {
	Options      config.Options
	Settings     *config.Settings
	SettingsPath string

	// Conn may be nil, in which case commands are only echoed.
	Conn Sender
	// Store may be nil to disable the transcript and .find.
	Store store.Store

	// Renderer styles the canvas; nil uses lipgloss's default.
	Renderer *lipgloss.Renderer
	// OpenURL launches a browser; nil uses the system opener.
	OpenURL func(url string)
	Now     func() time.Time
}

// Nominal terminal size used until the first WindowSizeMsg.
const (
	initialLines = 24
	initialCols  = 80
)

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root bubbletea model. It also implements client.Sink so
// the connection can post batches straight into the event queue.
type Model struct {
	opts         config.Options
	settings     *config.Settings
	settingsPath string
	conn         Sender
	store        store.Store

	sess       *session.State
	timers     *timer.Engine
	highlights *highlight.Engine
	layout     *layout.Manager
	router     *stream.Router
	parser     *parser.Parser
	keys       *keys.Tree
	line       *cmdline.Line
	palette    *screen.Palette
	colors     *color.Allocator

	events   chan tea.Msg
	flush    chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	width  int
	height int
	probe  bool
	title  string
}

var _ client.Sink = (*Model)(nil)

// New builds the pipeline and loads the configured layout.
func New(cfg Config) (*Model, error) {
	if cfg.Settings == nil {
		cfg.Settings = config.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	l, ok := cfg.Settings.Layout(cfg.Options.Layout)
	if !ok {
		if cfg.Options.Layout != "" {
			log.Printf("[WARN] Layout %q not found, using %q", cfg.Options.Layout, config.DefaultLayout)
		}
		if l, ok = cfg.Settings.Layout(config.DefaultLayout); !ok {
			return nil, fmt.Errorf("no layout %q in settings", config.DefaultLayout)
		}
	}

	tree, err := keys.Build(cfg.Settings.Keys)
	if err != nil {
		log.Printf("[WARN] Key bindings: %v", err)
	}

	m := &Model{
		opts:         cfg.Options,
		settings:     cfg.Settings,
		settingsPath: cfg.SettingsPath,
		conn:         cfg.Conn,
		store:        cfg.Store,
		keys:         tree,
		line:         cmdline.New(),
		events:       make(chan tea.Msg, 16),
		flush:        make(chan struct{}, 1),
		done:         make(chan struct{}),
	}

	m.sess = session.New(cfg.Options.Char)
	m.sess.Links = cfg.Options.Links
	now := cfg.Now
	m.timers = timer.New(func() time.Time { return m.sess.ServerNow(now()) }, m.notify)
	m.highlights = highlight.New(cfg.Settings.Highlights)

	m.palette = screen.NewPalette(cfg.Renderer)
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	colors, pairs := color.Capacity(renderer.ColorProfile())
	if cfg.Options.Colors > 0 {
		colors = cfg.Options.Colors
	}
	if cfg.Options.ColorPairs > 0 {
		pairs = cfg.Options.ColorPairs
	}
	m.colors = color.NewAllocator(colors, pairs, m.palette, cfg.Options.DefaultFG, cfg.Options.DefaultBG)

	m.layout = layout.NewManager(m.timers)
	m.layout.Command().Attach(m.line)
	m.layout.Load(l, initialLines, initialCols)

	var rec stream.Recorder
	if cfg.Store != nil {
		rec = cfg.Store
	}
	m.router = stream.New(m.layout, m.sess, cfg.Settings.Presets, rec, stream.Options{
		SpeechTimestamps: cfg.Options.SpeechTimestamps,
	})

	open := cfg.OpenURL
	if open == nil {
		open = OpenURL
	}
	m.parser = parser.New(parser.Config{
		Presets:    cfg.Settings.Presets,
		Highlights: m.highlights,
		Session:    m.sess,
		Timers:     m.timers,
		Windows:    m.layout,
		Router:     m.router,
		OpenURL:    open,
		RemoteURL:  cfg.Options.RemoteURL,
		Now:        cfg.Now,
	})
	return m, nil
}

// Session exposes the session context, e.g. for the startup unpin timer.
func (m *Model) Session() *session.State { return m.sess }

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type linesMsg []string
type closedMsg struct{ err error }
type flushMsg struct{}

// ReloadMsg asks the model to re-read the settings file. With
// HighlightsOnly set only the highlight rules are replaced.
type ReloadMsg struct{ HighlightsOnly bool }

// Post queues msg for the Update goroutine. It is safe to call from any
// goroutine and returns false once the model has shut down.
func (m *Model) Post(msg tea.Msg) bool {
	select {
	case m.events <- msg:
		return true
	case <-m.done:
		return false
	}
}

// Lines implements client.Sink.
func (m *Model) Lines(batch []string) { m.Post(linesMsg(batch)) }

// Closed implements client.Sink.
func (m *Model) Closed(err error) { m.Post(closedMsg{err: err}) }

// Shutdown releases goroutines blocked in Post. Call it after the
// program exits.
func (m *Model) Shutdown() {
	m.stopOnce.Do(func() { close(m.done) })
}

// notify requests a redraw; pending requests coalesce.
func (m *Model) notify() {
	select {
	case m.flush <- struct{}{}:
	default:
	}
}

// listen waits for the next queued event.
func (m *Model) listen() tea.Msg {
	select {
	case msg := <-m.events:
		return msg
	case <-m.flush:
		return flushMsg{}
	case <-m.done:
		return nil
	}
}

// ────────────────────────────────────────────────────────────
// Init / Update
// ────────────────────────────────────────────────────────────

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listen, m.titleCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout.Resize(msg.Height, msg.Width)
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, tea.Batch(cmd, m.titleCmd())

	case linesMsg:
		for _, line := range msg {
			m.parser.Feed(line)
		}
		m.flushStore()
		m.refreshCountdowns()
		return m, tea.Batch(m.listen, m.titleCmd())

	case flushMsg:
		m.refreshCountdowns()
		return m, m.listen

	case closedMsg:
		if msg.err != nil {
			log.Printf("[ERROR] %v", msg.err)
			return m, m.quit()
		}
		m.router.Notice(" *", " * Connection closed", " *")
		return m, m.listen

	case ReloadMsg:
		m.reload(msg.HighlightsOnly)
		return m, m.listen
	}

	return m, nil
}

func (m *Model) quit() tea.Cmd {
	m.flushStore()
	m.Shutdown()
	return tea.Quit
}

func (m *Model) flushStore() {
	if m.store == nil {
		return
	}
	if err := m.store.Flush(); err != nil {
		log.Printf("[WARN] Transcript flush: %v", err)
	}
}

func (m *Model) refreshCountdowns() {
	for _, w := range m.layout.Windows() {
		if d, ok := w.(*window.Countdown); ok {
			d.Refresh()
		}
	}
}

// reload re-reads the settings file and swaps in its highlights and,
// unless highlightsOnly, its presets. Layouts and key bindings are left
// alone. The current settings are kept when the file fails to load.
func (m *Model) reload(highlightsOnly bool) {
	s, err := config.Reload(m.settingsPath, m.settings)
	if err != nil {
		m.router.Notice(" *", " * Reload failed: "+err.Error(), " *")
		return
	}
	m.highlights.Replace(s.Highlights)
	m.settings.Highlights = s.Highlights
	if highlightsOnly {
		log.Printf("[INFO] Reloaded %d highlight rules", len(s.Highlights))
		return
	}

	m.settings.Presets = s.Presets
	m.parser.SetPresets(s.Presets)
	m.router.SetPresets(s.Presets)
	log.Printf("[INFO] Reloaded highlights and presets from %s", m.settingsPath)
	m.router.Notice(" * Settings reloaded")
}

func (m *Model) titleCmd() tea.Cmd {
	if m.opts.NoStatus {
		return nil
	}
	t := m.sess.Title()
	if t == m.title {
		return nil
	}
	m.title = t
	return tea.SetWindowTitle(t)
}
