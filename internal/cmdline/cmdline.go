// Package cmdline is the editable command line: a bubbles text input
// with command history and key macros.
package cmdline

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Line wraps a text input. It satisfies window.Editor.
type Line struct {
	input   textinput.Model
	History *History
}

// New creates a focused, empty command line.
func New() *Line {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()
	return &Line{input: ti, History: NewHistory()}
}

// Value is the current text.
func (l *Line) Value() string { return l.input.Value() }

// Position is the cursor position in runes.
func (l *Line) Position() int { return l.input.Position() }

// Update passes an unbound key to the text input.
func (l *Line) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return cmd
}

// Set replaces the text and moves the cursor to the end.
func (l *Line) Set(s string) {
	l.input.SetValue(s)
	l.input.CursorEnd()
}

// Submit clears the line, records it in history and returns it.
func (l *Line) Submit() string {
	cmd := l.input.Value()
	l.input.Reset()
	l.History.Commit(cmd)
	return cmd
}

// Previous shows the next older history entry.
func (l *Line) Previous() {
	if s, ok := l.History.Previous(l.Value()); ok {
		l.Set(s)
	}
}

// Next shows the next newer history entry.
func (l *Line) Next() {
	if s, ok := l.History.Next(l.Value()); ok {
		l.Set(s)
	}
}

// Macro types a macro into the line. submit is called for each \r with
// the command that was on the line.
func (l *Line) Macro(macro string, submit func(cmd string)) {
	text, pos := Expand(macro, l.Value(), l.Position(), func(cmd string) {
		l.History.Commit(cmd)
		submit(cmd)
	})
	l.input.SetValue(text)
	l.input.SetCursor(pos)
}

// Expand runs macro against a line with the cursor at pos and returns
// the resulting line and cursor.
//
//	\r  submit the line and start a new one
//	\x  clear the line
//	\\  a backslash
//	\@  an at sign
//	@   leave the cursor here when the macro ends
func Expand(macro, line string, pos int, submit func(cmd string)) (string, int) {
	buf := []rune(line)
	if pos < 0 || pos > len(buf) {
		pos = len(buf)
	}
	mark := -1
	insert := func(r rune) {
		buf = append(buf[:pos], append([]rune{r}, buf[pos:]...)...)
		pos++
	}

	escaped := false
	for _, r := range macro {
		if escaped {
			escaped = false
			switch r {
			case '\\', '@':
				insert(r)
			case 'x':
				buf, pos = buf[:0], 0
			case 'r':
				mark = -1
				submit(string(buf))
				buf, pos = nil, 0
			}
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '@':
			mark = pos
		default:
			insert(r)
		}
	}
	if mark >= 0 && mark <= len(buf) {
		pos = mark
	}
	return string(buf), pos
}
