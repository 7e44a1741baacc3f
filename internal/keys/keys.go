// Package keys resolves key presses against the configured binding tree.
//
// A binding either runs a named action, types a macro into the command
// line, or opens a nested table for a key chord. Keys are named the way
// bubbletea's KeyMsg.String() names them ("enter", "ctrl+a", "alt+1",
// "pgup"), with a few aliases accepted in the settings file.
package keys

import (
	"fmt"
	"log"
	"strings"
)

// Action names a built-in key action.
type Action string

const (
	SendCommand           Action = "send_command"
	PreviousCommand       Action = "previous_command"
	NextCommand           Action = "next_command"
	SendLastCommand       Action = "send_last_command"
	SendSecondLastCommand Action = "send_second_last_command"
	SwitchCurrentWindow   Action = "switch_current_window"
	ScrollUpOne           Action = "scroll_current_window_up_one"
	ScrollDownOne         Action = "scroll_current_window_down_one"
	ScrollUpPage          Action = "scroll_current_window_up_page"
	ScrollDownPage        Action = "scroll_current_window_down_page"
	ScrollBottom          Action = "scroll_current_window_bottom"
	SwitchArrowMode       Action = "switch_arrow_mode"

	// Line editing actions are carried out by the command line widget.
	CursorLeft          Action = "cursor_left"
	CursorRight         Action = "cursor_right"
	CursorWordLeft      Action = "cursor_word_left"
	CursorWordRight     Action = "cursor_word_right"
	CursorHome          Action = "cursor_home"
	CursorEnd           Action = "cursor_end"
	CursorBackspace     Action = "cursor_backspace"
	CursorDelete        Action = "cursor_delete"
	CursorBackspaceWord Action = "cursor_backspace_word"
	CursorDeleteWord    Action = "cursor_delete_word"
	CursorKillForward   Action = "cursor_kill_forward"
	CursorKillLine      Action = "cursor_kill_line"
)

var known = map[Action]bool{
	SendCommand: true, PreviousCommand: true, NextCommand: true,
	SendLastCommand: true, SendSecondLastCommand: true,
	SwitchCurrentWindow: true, ScrollUpOne: true, ScrollDownOne: true,
	ScrollUpPage: true, ScrollDownPage: true, ScrollBottom: true,
	SwitchArrowMode: true,
	CursorLeft: true, CursorRight: true, CursorWordLeft: true,
	CursorWordRight: true, CursorHome: true, CursorEnd: true,
	CursorBackspace: true, CursorDelete: true, CursorBackspaceWord: true,
	CursorDeleteWord: true, CursorKillForward: true, CursorKillLine: true,
}

// Spec is one binding as written in the settings file.
type Spec struct {
	ID     string `yaml:"id"`
	Action string `yaml:"action,omitempty"`
	Macro  string `yaml:"macro,omitempty"`
	Keys   []Spec `yaml:"keys,omitempty"`
}

// aliases maps settings-file key names to KeyMsg names.
var aliases = map[string]string{
	"return":    "enter",
	"page_up":   "pgup",
	"page_down": "pgdown",
	"escape":    "esc",
	"ctrl+?":    "backspace",
	"9":         "tab",
	"10":        "enter",
	"13":        "enter",
	"27":        "esc",
	"127":       "backspace",
}

// Name returns the KeyMsg name for a settings-file key id.
func Name(id string) string {
	id = strings.TrimSpace(id)
	if a, ok := aliases[strings.ToLower(id)]; ok {
		return a
	}
	if len(id) == 1 {
		return id
	}
	return strings.ToLower(id)
}

type node struct {
	action Action
	macro  string
	next   map[string]*node
}

// Tree is a key-binding tree with chord state. It is not safe for
// concurrent use.
type Tree struct {
	root    map[string]*node
	pending map[string]*node
}

// Build compiles specs. Bindings with an unknown action are logged and
// skipped; the returned error lists them.
func Build(specs []Spec) (*Tree, error) {
	t := &Tree{root: make(map[string]*node)}
	var bad []string
	build(specs, t.root, &bad)
	if len(bad) > 0 {
		return t, fmt.Errorf("unknown key actions: %s", strings.Join(bad, ", "))
	}
	return t, nil
}

func build(specs []Spec, into map[string]*node, bad *[]string) {
	for _, s := range specs {
		key := Name(s.ID)
		if key == "" {
			continue
		}
		switch {
		case s.Macro != "":
			into[key] = &node{macro: s.Macro}
		case s.Action != "":
			a := Action(s.Action)
			if !known[a] {
				log.Printf("[WARN] keys: %s bound to unknown action %q", key, s.Action)
				*bad = append(*bad, s.Action)
				continue
			}
			into[key] = &node{action: a}
		default:
			n := into[key]
			if n == nil || n.next == nil {
				n = &node{next: make(map[string]*node)}
				into[key] = n
			}
			build(s.Keys, n.next, bad)
		}
	}
}

// Result is the outcome of one key press.
type Result struct {
	Action Action
	Macro  string
	// Pending is set when the key opened a chord.
	Pending bool
	// Bound is false when the key has no binding. Inside a chord an
	// unbound key cancels the chord and is swallowed.
	Bound bool
}

// Press resolves key. Unbound keys outside a chord are left to the
// command line.
func (t *Tree) Press(key string) Result {
	table := t.root
	inChord := t.pending != nil
	if inChord {
		table = t.pending
	}
	t.pending = nil

	n, ok := table[key]
	if !ok {
		return Result{Bound: inChord}
	}
	if n.next != nil {
		t.pending = n.next
		return Result{Pending: true, Bound: true}
	}
	return Result{Action: n.action, Macro: n.macro, Bound: true}
}

// Pending reports whether a chord is in progress.
func (t *Tree) Pending() bool { return t.pending != nil }

// Bind sets a top-level key to an action.
func (t *Tree) Bind(key string, a Action) { t.root[key] = &node{action: a} }

// Lookup returns the action bound to a top-level key.
func (t *Tree) Lookup(key string) (Action, bool) {
	n, ok := t.root[key]
	if !ok || n.next != nil {
		return "", false
	}
	return n.action, n.action != ""
}

// ToggleArrowMode switches the up and down keys between history
// navigation and paging the current window. It reports the new mode.
func (t *Tree) ToggleArrowMode() (history bool) {
	if a, _ := t.Lookup("up"); a == PreviousCommand {
		t.Bind("up", ScrollUpPage)
		t.Bind("down", ScrollDownPage)
		return false
	}
	t.Bind("up", PreviousCommand)
	t.Bind("down", NextCommand)
	return true
}
