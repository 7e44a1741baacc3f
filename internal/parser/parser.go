package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/strnglp/ProfanityFE/internal/highlight"
	"github.com/strnglp/ProfanityFE/internal/session"
	"github.com/strnglp/ProfanityFE/internal/span"
	"github.com/strnglp/ProfanityFE/internal/timer"
	"github.com/strnglp/ProfanityFE/internal/window"
)

// Presets looks up a named colour preset.
type Presets interface {
	Preset(id string) (fg, bg string, ok bool)
}

// Windows is the part of the layout the parser updates directly.
type Windows interface {
	Stream(id string) *window.Text
	Indicator(key string) *window.Indicator
	Progress(key string) *window.Progress
	SetPrompt(label string)
}

// Router receives finalized lines.
type Router interface {
	Route(stream string, line span.Line)
	Blank()
	EchoPrompt()
	Notice(lines ...string)
}

// Config wires a Parser to its collaborators.
type Config struct {
	Presets    Presets
	Highlights *highlight.Engine
	Session    *session.State
	Timers     *timer.Engine
	Windows    Windows
	Router     Router

	// OpenURL launches a browser; nil or RemoteURL prints the link instead.
	OpenURL   func(url string)
	RemoteURL bool

	// Now returns local time.
	Now func() time.Time
}

// URLBase prefixes the relative paths sent in LaunchURL tags.
const URLBase = "https://www.play.net"

// openSet holds the spans opened by tags but not yet closed.
type openSet struct {
	bold   []span.Span
	preset []span.Span
	color  []span.Span
	link   []span.Span
	style  *span.Span
}

func (o *openSet) clone() openSet {
	c := openSet{
		bold:   span.Clone(o.bold),
		preset: span.Clone(o.preset),
		color:  span.Clone(o.color),
		link:   span.Clone(o.link),
	}
	if o.style != nil {
		s := *o.style
		c.style = &s
	}
	return c
}

func (o *openSet) each(f func(*span.Span)) {
	for _, list := range [][]span.Span{o.bold, o.preset, o.color, o.link} {
		for i := range list {
			f(&list[i])
		}
	}
	if o.style != nil {
		f(o.style)
	}
}

// Parser is the protocol state machine. It is not safe for concurrent
// use.
type Parser struct {
	cfg Config

	stream string
	spans  []span.Span
	open   openSet
	mirror []string
}

// New creates a parser.
func New(cfg Config) *Parser {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Parser{cfg: cfg}
}

// SetPresets swaps the preset table after a reload.
func (p *Parser) SetPresets(ps Presets) { p.cfg.Presets = ps }

// Stream is the current stream, empty when none is pushed.
func (p *Parser) Stream() string { return p.stream }

func (p *Parser) preset(id string) (fg, bg string, ok bool) {
	if p.cfg.Presets == nil {
		return "", "", false
	}
	return p.cfg.Presets.Preset(id)
}

// Feed processes one newline-stripped line from the server.
func (p *Parser) Feed(line string) {
	if line == "" {
		if p.stream == "" {
			p.cfg.Router.Blank()
		}
		return
	}

	buf := line
	for {
		start, raw, ok := NextTag(buf)
		if !ok {
			break
		}
		buf = buf[:start] + buf[start+len(raw):]
		buf = p.apply(Classify(raw), start, buf)
	}

	if p.room() && len(p.mirror) > 0 {
		mirroredDesc := false
		for _, stream := range p.mirror {
			saved := p.open.clone()
			out := p.finalize(stream, buf, span.Clone(p.spans), &saved, false)
			p.route(stream, out)
			if stream == session.RoomDesc {
				mirroredDesc = true
			}
		}
		if mirroredDesc {
			buf = p.trimDesc(buf)
		}
	}
	p.mirror = p.mirror[:0]

	p.flush(buf)
}

func (p *Parser) room() bool {
	return p.cfg.Windows != nil && p.cfg.Windows.Stream("room") != nil
}

// trimDesc keeps only the "You also see" tail of a description that was
// mirrored to the room window.
func (p *Parser) trimDesc(buf string) string {
	i := strings.Index(buf, "You also see")
	if i < 0 {
		p.spans = p.spans[:0]
		return ""
	}
	kept := p.spans[:0]
	for _, s := range p.spans {
		if s.Start >= i {
			s.Start -= i
			s.End -= i
			kept = append(kept, s)
		}
	}
	p.spans = kept
	p.open.each(func(s *span.Span) {
		s.Start -= i
		if s.Start < 0 {
			s.Start = 0
		}
	})
	return buf[i:]
}

// flush finalizes text under the current stream and resets the recorded
// spans.
func (p *Parser) flush(text string) {
	out := p.finalize(p.stream, text, p.spans, &p.open, true)
	p.spans = nil
	p.route(p.stream, out)
}

func (p *Parser) route(stream string, line span.Line) {
	if p.cfg.Router != nil {
		p.cfg.Router.Route(stream, line)
	}
}

func (p *Parser) addMirror(stream string) {
	for _, s := range p.mirror {
		if s == stream {
			return
		}
	}
	p.mirror = append(p.mirror, stream)
}

// apply performs the effect of one tag found at start and returns the
// buffer, which shrinks when a stream boundary flushes its prefix.
func (p *Parser) apply(t Tag, start int, buf string) string {
	switch t.Kind {
	case Prompt:
		p.prompt(t)
	case Spell:
		p.label("spell", t.Text, t.Text != "None")
	case RoomWindow:
		p.cfg.Session.SetRoom(t.Text)
		p.label("room", t.Text, t.Text != "")
	case Hand:
		p.label(t.ID, t.Text, t.Text != "Empty")
	case RoundTime, CastTime:
		v, _ := strconv.ParseInt(t.Value, 10, 64)
		slot := timer.Primary
		if t.Kind == CastTime {
			slot = timer.Secondary
		}
		p.cfg.Timers.Set(timer.Roundtime, slot, time.Unix(v, 0))
	case Compass:
		p.compass(t.Dirs)
	case ProgressBar:
		p.progress(t)
	case ArbProgress:
		p.arbProgress(t)
	case PushBold:
		s := span.Span{Start: start}
		if fg, bg, ok := p.preset("monsterbold"); ok {
			s.FG, s.BG, s.Priority, s.Monsterbold = fg, bg, 2, true
		}
		p.open.bold = append(p.open.bold, s)
	case PopBold:
		p.open.bold = p.closeTop(p.open.bold, start, true)
	case Preset:
		s := span.Span{Start: start}
		if fg, bg, ok := p.preset(t.ID); ok {
			s.FG, s.BG, s.Priority = fg, bg, 1
		}
		p.open.preset = append(p.open.preset, s)
	case PresetClose:
		p.open.preset = p.closeTop(p.open.preset, start, true)
	case Color:
		s := span.Span{Start: start, FG: strings.ToLower(t.Attrs["fg"]), BG: strings.ToLower(t.Attrs["bg"])}
		if ul, ok := t.Attrs["ul"]; ok {
			s.Underline = ul != "" && ul != "false" && ul != "n" && ul != "0"
		}
		p.open.color = append(p.open.color, s)
	case ColorClose:
		p.open.color = p.closeTop(p.open.color, start, true)
	case Style:
		p.style(t.ID, start)
	case PushStream:
		buf = p.pushStream(t.ID, start, buf)
	case ClearStream:
		if w := p.cfg.Windows.Stream(t.ID); w != nil {
			w.Clear()
		}
		if t.ID == "room" {
			p.cfg.Session.PurgeRoom()
		}
	case PopStream:
		p.flush(buf[:start])
		buf = buf[start:]
		p.stream = ""
	case Icon:
		on := t.Value == "y"
		p.cfg.Timers.SetActive(t.ID, on)
		if w := p.cfg.Windows.Indicator(t.ID); w != nil {
			w.Update(boolInt(on))
		}
	case Image:
		p.image(t)
	case LaunchURL:
		url := URLBase + t.Value
		if p.cfg.RemoteURL || p.cfg.OpenURL == nil {
			p.cfg.Router.Notice(" *", " * LaunchURL: "+url, " *")
		} else {
			p.cfg.OpenURL(url)
		}
	case Anchor:
		if p.cfg.Session.Links {
			s := span.Span{Start: start, Priority: 1}
			s.FG, s.BG, _ = p.preset("links")
			p.open.link = append(p.open.link, s)
		}
	case AnchorClose:
		p.open.link = p.closeTop(p.open.link, start, true)
		switch {
		case strings.HasPrefix(buf, "Obvious paths:"), strings.HasPrefix(buf, "Obvious exits:"):
			p.addMirror(session.RoomExits)
		case strings.HasPrefix(buf, "Also here:"):
			p.addMirror(session.RoomPlayers)
		}
	}
	return buf
}

// closeTop pops the innermost open span and records it ending at end.
// With styledOnly, spans carrying no attribute are dropped.
func (p *Parser) closeTop(stack []span.Span, end int, styledOnly bool) []span.Span {
	if len(stack) == 0 {
		return stack
	}
	s := stack[len(stack)-1]
	s.End = end
	if !styledOnly || s.Styled() {
		p.spans = append(p.spans, s)
	}
	return stack[:len(stack)-1]
}

func (p *Parser) prompt(t Tag) {
	sess := p.cfg.Session
	server, _ := strconv.ParseInt(t.Value, 10, 64)
	sess.PinOffset(server, p.cfg.Now())

	label := t.Text + ">"
	if !sess.SetPrompt(label) {
		sess.SetNeedPrompt(true)
		return
	}
	sess.SetNeedPrompt(false)
	p.cfg.Router.EchoPrompt()
	p.cfg.Windows.SetPrompt(label)
}

func (p *Parser) label(key, text string, on bool) {
	if w := p.cfg.Windows.Indicator(key); w != nil {
		w.SetLabel(text)
		w.Update(boolInt(on))
	}
}

// CompassDirs are the directions with a compass indicator.
var CompassDirs = []string{"up", "down", "out", "n", "ne", "e", "se", "s", "sw", "w", "nw"}

func (p *Parser) compass(open []string) {
	for _, dir := range CompassDirs {
		w := p.cfg.Windows.Indicator("compass:" + dir)
		if w == nil {
			continue
		}
		on := false
		for _, d := range open {
			if d == dir {
				on = true
				break
			}
		}
		w.Update(boolInt(on))
	}
}

var gaugeText = regexp.MustCompile(`\s+(-?[0-9]+)/([0-9]+)$`)

func (p *Parser) progress(t Tag) {
	value, _ := strconv.Atoi(t.Value)
	gauge := func(key string, v, max int) {
		if w := p.cfg.Windows.Progress(key); w != nil {
			w.Update(v, max)
		}
	}
	switch t.ID {
	case "encumlevel":
		if t.Text == "Overloaded" {
			value = 110
		}
		gauge("encumbrance", value, 110)
	case "pbarStance":
		gauge("stance", value, 100)
	case "mindState":
		if t.Text == "saturated" {
			value = 110
		}
		gauge("mind", value, 110)
	default:
		m := gaugeText.FindStringSubmatch(t.Text)
		if m == nil {
			return
		}
		cur, _ := strconv.Atoi(m[1])
		max, _ := strconv.Atoi(m[2])
		gauge(t.ID, cur, max)
	}
}

// arbProgress updates a user-defined gauge. colors is "bg,fg".
func (p *Parser) arbProgress(t Tag) {
	w := p.cfg.Windows.Progress(t.ID)
	if w == nil {
		return
	}
	max, _ := strconv.Atoi(t.Attrs["max"])
	cur, _ := strconv.Atoi(t.Attrs["current"])
	if cur > max {
		cur = max
	}
	if label, ok := t.Attrs["label"]; ok && label != "" {
		w.Label = label
	}
	if colors, ok := t.Attrs["colors"]; ok && colors != "" {
		bg, fg, _ := strings.Cut(colors, ",")
		if bg != "" {
			w.BG = []string{strings.ToLower(bg)}
		}
		if fg != "" {
			w.FG = []string{strings.ToLower(fg)}
		}
	}
	w.Update(cur, max)
}

func (p *Parser) style(id string, start int) {
	if id == "" {
		if s := p.open.style; s != nil {
			s.End = start
			if s.Start < s.End && s.Styled() {
				p.spans = append(p.spans, *s)
			}
			p.open.style = nil
		}
		return
	}
	s := &span.Span{Start: start}
	if fg, bg, ok := p.preset(id); ok {
		s.FG, s.BG = fg, bg
	}
	p.open.style = s
	if id == session.RoomName || id == session.RoomDesc {
		p.addMirror(id)
	}
}

// pushStream flushes the text before the tag under the previous stream
// and switches to id.
func (p *Parser) pushStream(id string, start int, buf string) string {
	prefix := buf[:start]
	if prefix != "" {
		p.flush(prefix)
	} else {
		p.spans = p.spans[:0]
	}
	buf = buf[start:]

	switch {
	case id == session.RoomObjs && prefix == "":
		p.cfg.Session.ForgetRoom(session.RoomObjs)
	case id == session.RoomPlayers:
		if strings.HasPrefix(buf, "Also here:") {
			p.addMirror(id)
		} else {
			p.cfg.Session.ForgetRoom(session.RoomPlayers)
		}
	}
	if strings.HasPrefix(id, "exp ") {
		id = "exp"
	}
	p.stream = id
	return buf
}

var injuries = map[string]int{"Injury1": 1, "Injury2": 2, "Injury3": 3, "Scar1": 4, "Scar2": 5, "Scar3": 6}

func (p *Parser) image(t Tag) {
	w := p.cfg.Windows.Indicator(t.ID)
	if w == nil {
		return
	}
	if t.ID != "nsys" {
		w.Update(injuries[t.Value])
		return
	}
	rank := 0
	if i := strings.IndexAny(t.Value, "0123456789"); i >= 0 {
		rank = int(t.Value[i] - '0')
	}
	w.Update(rank)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
