// Package stream delivers finalized lines to their windows, applying the
// per-stream rewrites along the way.
package stream

import (
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/strnglp/ProfanityFE/internal/session"
	"github.com/strnglp/ProfanityFE/internal/span"
	"github.com/strnglp/ProfanityFE/internal/window"
	"github.com/strnglp/ProfanityFE/pkg/timeutil"
)

// PromptFG colours echoed prompts and commands.
const PromptFG = "555555"

// Windows resolves stream ids to text windows.
type Windows interface {
	Stream(id string) *window.Text
}

// Presets looks up a named colour preset.
type Presets interface {
	Preset(id string) (fg, bg string, ok bool)
}

// Recorder receives every line added to a window.
type Recorder interface {
	Record(stream string, line span.Line)
}

// Options are the user toggles that change routing output.
type Options struct {
	// SpeechTimestamps appends the local time to speech, thoughts and
	// familiar lines.
	SpeechTimestamps bool
}

// Router implements parser.Router.
type Router struct {
	win     Windows
	sess    *session.State
	presets Presets
	rec     Recorder
	opts    Options
	now     func() time.Time
}

// New creates a router. rec may be nil.
func New(win Windows, sess *session.State, presets Presets, rec Recorder, opts Options) *Router {
	return &Router{win: win, sess: sess, presets: presets, rec: rec, opts: opts, now: time.Now}
}

// SetClock replaces the clock used for timestamps.
func (r *Router) SetClock(now func() time.Time) { r.now = now }

// SetPresets swaps the preset table after a reload.
func (r *Router) SetPresets(p Presets) { r.presets = p }

// fallback streams are shown in main when they have no window.
var fallback = map[string]bool{
	"death": true, "logons": true, "thoughts": true, "voln": true,
	"familiar": true, "assess": true, "ooc": true, "shopWindow": true,
	"combat": true, "moonWindow": true, "atmospherics": true, "charprofile": true,
}

var (
	lnetChat     = regexp.MustCompile(`^\[.+?\]-[A-Za-z]+:[A-Z][a-z]+: "|^\[server\]: `)
	serverNotice = regexp.MustCompile(`^\[server\]: "(?:kill|connect)`)
)

func (r *Router) add(w *window.Text, stream string, line span.Line) {
	if w.Timestamp {
		line = stamp(line, timeutil.ClockSeconds(r.now()))
	}
	w.Add(line)
	if r.rec != nil {
		r.rec.Record(stream, line)
	}
}

// Route delivers line from stream.
func (r *Router) Route(stream string, line span.Line) {
	if session.IsRoomField(stream) {
		r.roomField(stream, line)
		if w := r.win.Stream(stream); w != nil && line.Text != "" {
			r.add(w, stream, line)
		}
		return
	}
	if line.Text == "" {
		return
	}

	if stream == "" {
		r.main(line)
		return
	}

	if stream == "thoughts" && lnetChat.MatchString(line.Text) {
		stream = "lnet"
	}

	if w := r.win.Stream(stream); w != nil {
		var ok bool
		if line, ok = r.rewrite(stream, line); !ok {
			return
		}
		if serverNotice.MatchString(line.Text) {
			return
		}
		r.add(w, stream, line)
		return
	}

	if !fallback[stream] {
		return
	}
	main := r.win.Stream("main")
	if main == nil {
		return
	}
	var ok bool
	if line, ok = r.rewrite(stream, line); !ok {
		return
	}
	if fg, bg, found := r.preset(stream); found {
		line.Spans = append([]span.Span{{Start: 0, End: len(line.Text), FG: fg, BG: bg}}, line.Spans...)
	}
	r.pendingPrompt(main)
	r.add(main, stream, line)
}

func (r *Router) preset(id string) (fg, bg string, ok bool) {
	if r.presets == nil {
		return "", "", false
	}
	return r.presets.Preset(id)
}

// rewrite applies the stream-specific transforms. It reports false when
// the line should be dropped.
func (r *Router) rewrite(stream string, line span.Line) (span.Line, bool) {
	switch stream {
	case "death":
		return r.death(line)
	case "logons":
		return r.logon(line), true
	case "speech", "thoughts", "familiar", "lnet":
		if r.opts.SpeechTimestamps {
			line = stamp(line, timeutil.ClockSeconds(r.now()))
		}
	}
	return line, true
}

func stamp(line span.Line, clock string) span.Line {
	line.Text = line.Text + " (" + clock + ")"
	return line
}

// main adds a line that arrived outside any stream.
func (r *Router) main(line span.Line) {
	main := r.win.Stream("main")
	if main == nil {
		return
	}
	r.pendingPrompt(main)

	if room, ok := r.sess.RoomLine(session.RoomName); ok && room.Text != "" && strings.HasPrefix(line.Text, room.Text) {
		line = roomNameLine(line, room, main.TextWidth())
	}
	r.add(main, "", line)
}

// roomNameLine pads a line that starts with the room name to the window
// width and stretches the room name's spans across it.
func roomNameLine(line, room span.Line, width int) span.Line {
	text := line.Text
	if pad := width - runewidth.StringWidth(text) - 1; pad > 0 {
		text += strings.Repeat(" ", pad)
	}
	out := span.Line{Text: text, Spans: span.Clone(line.Spans)}
	for _, s := range room.Spans {
		s.Start = 0
		s.End = len(text)
		out.Spans = append(out.Spans, s)
	}
	return out
}

// Blank adds an empty line to main.
func (r *Router) Blank() {
	main := r.win.Stream("main")
	if main == nil {
		return
	}
	r.pendingPrompt(main)
	r.add(main, "", span.Line{})
}

func (r *Router) pendingPrompt(main *window.Text) {
	if r.sess.NeedPrompt() {
		r.sess.SetNeedPrompt(false)
		r.add(main, "", PromptLine(r.sess.Prompt(), ""))
	}
}

// EchoPrompt adds the current prompt to main.
func (r *Router) EchoPrompt() { r.Echo("") }

// Echo adds the prompt followed by a sent command to main.
func (r *Router) Echo(cmd string) {
	r.sess.SetNeedPrompt(false)
	if main := r.win.Stream("main"); main != nil {
		r.add(main, "", PromptLine(r.sess.Prompt(), cmd))
	}
}

// EchoLocal is Echo for input handled by the client itself. The line is
// shown but not recorded.
func (r *Router) EchoLocal(cmd string) {
	r.sess.SetNeedPrompt(false)
	if main := r.win.Stream("main"); main != nil {
		main.Add(PromptLine(r.sess.Prompt(), cmd))
	}
}

// PromptLine is prompt+cmd in the dimmed prompt colour.
func PromptLine(prompt, cmd string) span.Line {
	text := prompt + cmd
	return span.Line{Text: text, Spans: []span.Span{{Start: 0, End: len(text), FG: PromptFG}}}
}

// Notice adds plain client-generated lines to main. They are not
// recorded in the transcript.
func (r *Router) Notice(lines ...string) {
	main := r.win.Stream("main")
	if main == nil {
		return
	}
	for _, l := range lines {
		main.Add(span.Line{Text: l})
	}
}
