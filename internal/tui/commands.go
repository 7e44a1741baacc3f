package tui

import (
	"fmt"
	"log"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strnglp/ProfanityFE/internal/command"
	"github.com/strnglp/ProfanityFE/internal/layout"
	"github.com/strnglp/ProfanityFE/pkg/jsonutil"
	"github.com/strnglp/ProfanityFE/pkg/timeutil"
)

// findLimit caps the lines printed by .find.
const findLimit = 20

// submit echoes input after the prompt and then either sends it or
// runs it as a meta-command. Only sent commands enter the transcript.
func (m *Model) submit(input string) tea.Cmd {
	c := command.Parse(input)
	if c.Local() {
		m.router.EchoLocal(input)
	} else {
		m.router.Echo(input)
	}

	switch c.Kind {
	case command.Send:
		m.send(c.Line)
	case command.Quit:
		return m.quit()
	case command.KeyProbe:
		m.probe = true
		m.router.Notice(" * Press a key")
	case command.FixColor:
		m.colors.Refresh()
	case command.Resync:
		m.sess.Resync()
		m.router.Notice(" * Server time offset will resync on the next prompt")
	case command.Reload:
		m.reload(false)
	case command.Layout:
		m.loadLayout(c.Arg)
	case command.Arrow:
		m.toggleArrows()
	case command.Eval:
		m.eval(c.Arg)
	case command.Links:
		m.sess.Links = !m.sess.Links
		m.router.Notice(fmt.Sprintf(" * Links %s", onOff(m.sess.Links)))
	case command.Find:
		m.find(c.Arg)
	}
	return nil
}

func (m *Model) send(cmd string) {
	if m.conn == nil {
		log.Printf("[DEBUG] Not connected, dropping %q", cmd)
		return
	}
	if err := m.conn.Send(cmd); err != nil {
		log.Printf("[ERROR] %v", err)
		m.router.Notice(" * " + err.Error())
	}
}

func (m *Model) loadLayout(name string) {
	l, ok := m.settings.Layout(name)
	if !ok {
		m.router.Notice(fmt.Sprintf(" * No layout named %q", name))
		return
	}
	lines, cols := m.layout.Size()
	m.layout.Load(l, lines, cols)
	log.Printf("[INFO] Loaded layout %s", name)
}

func (m *Model) eval(expr string) {
	lines, cols := m.layout.Size()
	v, err := layout.Eval(expr, lines, cols)
	if err != nil {
		m.router.Notice(" * " + err.Error())
		return
	}
	m.router.Notice(" = " + strconv.Itoa(v))
}

// find prints the newest transcript lines containing text, oldest of
// them first.
func (m *Model) find(text string) {
	if m.store == nil {
		m.router.Notice(" * Transcript is disabled")
		return
	}
	entries, err := m.store.Search(text, findLimit)
	if err != nil {
		log.Printf("[ERROR] %v", err)
		m.router.Notice(" * Search failed: " + err.Error())
		return
	}
	if len(entries) == 0 {
		m.router.Notice(fmt.Sprintf(" * No lines matching %q", text))
		return
	}

	width := initialCols
	if w := m.layout.Stream("main"); w != nil && w.TextWidth() > 0 {
		width = w.TextWidth()
	}
	out := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		prefix := "[" + timeutil.Clock(e.Time()) + "] "
		if e.Stream != "" {
			prefix += e.Stream + ": "
		}
		out = append(out, jsonutil.TruncateString(prefix+e.Text, width))
	}
	m.router.Notice(out...)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
