// Package session holds the per-connection state the parser, router and
// status line share: the prompt, the room title, the server clock offset
// and the room cache.
package session

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/strnglp/ProfanityFE/internal/span"
)

// Room sub-field stream ids.
const (
	RoomName    = "roomName"
	RoomDesc    = "roomDesc"
	RoomObjs    = "room objs"
	RoomPlayers = "room players"
	RoomExits   = "room exits"
)

// RoomFields lists the room sub-fields in display order.
var RoomFields = []string{RoomName, RoomDesc, RoomObjs, RoomPlayers, RoomExits}

// IsRoomField reports whether stream is one of the cached room sub-fields.
func IsRoomField(stream string) bool {
	for _, f := range RoomFields {
		if f == stream {
			return true
		}
	}
	return false
}

// State is owned by the read pipeline. Only the clock offset is touched
// from other goroutines.
type State struct {
	Char string

	// Links turns on link highlighting for <a> tags.
	Links bool

	prompt     string
	room       string
	needPrompt bool

	offset atomic.Int64 // local minus server, in milliseconds
	pinned atomic.Bool

	rooms map[string]span.Line
}

// New creates the state for character char.
func New(char string) *State {
	if char == "" {
		char = "Unknown"
	}
	return &State{
		Char:   strings.ToUpper(char[:1]) + char[1:],
		prompt: ">",
		rooms:  make(map[string]span.Line),
	}
}

// Prompt is the last prompt label including its trailing '>'.
func (s *State) Prompt() string { return s.prompt }

// SetPrompt stores label and reports whether it differs from the last one.
func (s *State) SetPrompt(label string) bool {
	if label == s.prompt {
		return false
	}
	s.prompt = label
	return true
}

// Room is the room title from the last room stream window.
func (s *State) Room() string { return s.room }

func (s *State) SetRoom(title string) { s.room = title }

// NeedPrompt reports whether a prompt is waiting to be echoed before the
// next main window line.
func (s *State) NeedPrompt() bool { return s.needPrompt }

func (s *State) SetNeedPrompt(v bool) { s.needPrompt = v }

// Title is the terminal title: the character name followed by the prompt
// and room in brackets, with prompt markers removed.
func (s *State) Title() string {
	var parts []string
	for _, p := range []string{strings.TrimSpace(strings.TrimSuffix(s.prompt, ">")), s.room} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return s.Char
	}
	return strings.ReplaceAll(s.Char+" ["+strings.Join(parts, ":")+"]", ">", "")
}

// PinOffset records local minus server time unless an offset is already
// pinned.
func (s *State) PinOffset(server int64, now time.Time) {
	if s.pinned.Load() {
		return
	}
	s.offset.Store(now.UnixMilli() - server*1000)
	s.pinned.Store(true)
}

// Resync lets the next prompt re-pin the offset.
func (s *State) Resync() { s.pinned.Store(false) }

// Pinned reports whether the offset is pinned.
func (s *State) Pinned() bool { return s.pinned.Load() }

// Offset is local time minus server time.
func (s *State) Offset() time.Duration {
	return time.Duration(s.offset.Load()) * time.Millisecond
}

// ServerNow converts local time to server time.
func (s *State) ServerNow(now time.Time) time.Time { return now.Add(-s.Offset()) }

// UnpinAfter lets the offset re-pin once d has passed. It covers the
// prompts that arrive during login before the server clock settles.
func (s *State) UnpinAfter(d time.Duration) *time.Timer {
	return time.AfterFunc(d, s.Resync)
}

// CacheRoom stores the latest line for a room sub-field.
func (s *State) CacheRoom(field string, line span.Line) {
	s.rooms[field] = line.Clone()
}

// RoomLine returns the cached line for a room sub-field.
func (s *State) RoomLine(field string) (span.Line, bool) {
	l, ok := s.rooms[field]
	return l, ok
}

// ForgetRoom clears one cached sub-field.
func (s *State) ForgetRoom(field string) { delete(s.rooms, field) }

// PurgeRoom clears every cached sub-field.
func (s *State) PurgeRoom() { clear(s.rooms) }
