package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/strnglp/ProfanityFE/internal/keys"
	"github.com/strnglp/ProfanityFE/internal/window"
)

// editKeys translates line-editing actions into the key presses the
// text input already understands.
var editKeys = map[keys.Action]tea.KeyMsg{
	keys.CursorLeft:          {Type: tea.KeyLeft},
	keys.CursorRight:         {Type: tea.KeyRight},
	keys.CursorWordLeft:      {Type: tea.KeyLeft, Alt: true},
	keys.CursorWordRight:     {Type: tea.KeyRight, Alt: true},
	keys.CursorHome:          {Type: tea.KeyHome},
	keys.CursorEnd:           {Type: tea.KeyEnd},
	keys.CursorBackspace:     {Type: tea.KeyBackspace},
	keys.CursorDelete:        {Type: tea.KeyDelete},
	keys.CursorBackspaceWord: {Type: tea.KeyCtrlW},
	keys.CursorDeleteWord:    {Type: tea.KeyDelete, Alt: true},
	keys.CursorKillForward:   {Type: tea.KeyCtrlK},
}

// handleKey resolves a key press against the binding tree. Keys with no
// binding are typed into the command line.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if m.probe {
		m.probe = false
		m.router.Notice(" * key: " + key)
		return nil
	}

	res := m.keys.Press(key)
	switch {
	case res.Pending:
		return nil
	case res.Action != "":
		return m.action(res.Action)
	case res.Macro != "":
		var cmds []tea.Cmd
		m.line.Macro(res.Macro, func(cmd string) {
			cmds = append(cmds, m.submit(cmd))
		})
		return tea.Batch(cmds...)
	case res.Bound:
		return nil
	}

	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	return m.line.Update(msg)
}

func (m *Model) action(a keys.Action) tea.Cmd {
	switch a {
	case keys.SendCommand:
		return m.submit(m.line.Submit())
	case keys.PreviousCommand:
		m.line.Previous()
	case keys.NextCommand:
		m.line.Next()
	case keys.SendLastCommand:
		return m.resend(1)
	case keys.SendSecondLastCommand:
		return m.resend(2)
	case keys.SwitchCurrentWindow:
		m.layout.NextScrollWindow()
	case keys.ScrollUpOne:
		m.scroll(func(w *window.Text) { w.Scroll(1) })
	case keys.ScrollDownOne:
		m.scroll(func(w *window.Text) { w.Scroll(-1) })
	case keys.ScrollUpPage:
		m.scroll(func(w *window.Text) { w.ScrollPage(1) })
	case keys.ScrollDownPage:
		m.scroll(func(w *window.Text) { w.ScrollPage(-1) })
	case keys.ScrollBottom:
		m.scroll((*window.Text).ScrollBottom)
	case keys.SwitchArrowMode:
		m.toggleArrows()
	case keys.CursorKillLine:
		m.line.Set("")
	default:
		if k, ok := editKeys[a]; ok {
			return m.line.Update(k)
		}
	}
	return nil
}

// resend submits the nth most recent history entry again.
func (m *Model) resend(n int) tea.Cmd {
	cmd, ok := m.line.History.Recent(n)
	if !ok {
		return nil
	}
	return m.submit(cmd)
}

func (m *Model) scroll(f func(*window.Text)) {
	if w := m.layout.ScrollWindow(); w != nil {
		f(w)
	}
}

func (m *Model) toggleArrows() {
	if m.keys.ToggleArrowMode() {
		m.router.Notice(" * Arrow keys browse command history")
	} else {
		m.router.Notice(" * Arrow keys scroll the current window")
	}
}
