// Package parser turns the game server's tagged text into styled lines.
//
// Parsing happens in two steps. NextTag and Classify recognize a tag and
// describe it as a Tag value with an explicit Kind; the Parser then
// applies the effect of each kind to its stream and span state.
package parser

import (
	"strconv"
	"strings"
)

// Kind identifies a recognized tag.
type Kind int

const (
	Unknown Kind = iota
	Prompt
	Spell
	RoomWindow
	Hand
	RoundTime
	CastTime
	Compass
	ProgressBar
	ArbProgress
	PushBold
	PopBold
	Preset
	PresetClose
	Color
	ColorClose
	Style
	PushStream
	ClearStream
	PopStream
	Icon
	Image
	LaunchURL
	Anchor
	AnchorClose
)

var kindNames = [...]string{
	"unknown", "prompt", "spell", "roomWindow", "hand", "roundTime", "castTime",
	"compass", "progressBar", "arbProgress", "pushBold", "popBold", "preset",
	"presetClose", "color", "colorClose", "style", "pushStream", "clearStream",
	"popStream", "icon", "image", "launchURL", "anchor", "anchorClose",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Tag is a classified tag. Only the fields meaningful for its Kind are
// set.
type Tag struct {
	Kind  Kind
	Raw   string
	ID    string
	Text  string
	Value string
	Attrs map[string]string
	Dirs  []string
}

// wrapping tags swallow their content up to the matching name plus '>'.
var wrapping = []string{"prompt", "spell", "right", "left", "inv", "style", "compass"}

// NextTag finds the first tag in buf. It returns the byte offset of the
// tag and its full text. A '<' with no closing '>' is literal text.
func NextTag(buf string) (start int, tag string, ok bool) {
	start = strings.IndexByte(buf, '<')
	if start < 0 {
		return 0, "", false
	}
	rest := buf[start+1:]
	for _, name := range wrapping {
		if !strings.HasPrefix(rest, name) {
			continue
		}
		if i := strings.Index(rest[len(name):], name+">"); i >= 0 {
			end := start + 1 + len(name) + i + len(name) + 1
			return start, buf[start:end], true
		}
		break
	}
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return 0, "", false
	}
	return start, buf[start : start+end+2], true
}

// Classify describes raw as a Tag. Tags that do not match a known form
// come back as Unknown.
func Classify(raw string) Tag {
	t := Tag{Kind: Unknown, Raw: raw}
	switch raw {
	case "<pushBold/>", "<b>":
		t.Kind = PushBold
		return t
	case "<popBold/>", "</b>":
		t.Kind = PopBold
		return t
	case "</preset>":
		t.Kind = PresetClose
		return t
	case "</color>":
		t.Kind = ColorClose
		return t
	case "</component>":
		t.Kind = PopStream
		return t
	case "</a>":
		t.Kind = AnchorClose
		return t
	}

	name := tagName(raw)
	attrs := parseAttrs(raw)
	switch name {
	case "prompt":
		return classifyPrompt(t, attrs)
	case "spell":
		if inner, ok := innerText(raw, "spell"); ok {
			t.Kind, t.Text = Spell, inner
		}
	case "right", "left":
		if inner, ok := innerText(raw, name); ok {
			t.Kind, t.ID, t.Text = Hand, name, inner
		}
	case "streamWindow":
		sub, ok := attrs["subtitle"]
		if attrs["id"] == "room" && ok && strings.HasPrefix(sub, " - ") {
			t.Kind, t.ID, t.Text = RoomWindow, "room", sub[len(" - "):]
		}
	case "roundTime", "castTime":
		if v, ok := attrs["value"]; ok && isDigits(v) {
			t.Kind, t.Value = RoundTime, v
			if name == "castTime" {
				t.Kind = CastTime
			}
		}
	case "compass":
		t.Kind = Compass
		t.Dirs = dirs(raw)
	case "progressBar":
		if id, ok := attrs["id"]; ok {
			t.Kind, t.ID, t.Value, t.Text = ProgressBar, id, attrs["value"], attrs["text"]
		}
	case "arbProgress":
		id := attrs["id"]
		if id != "" && isAlnum(id) && isDigits(attrs["max"]) && isDigits(attrs["current"]) {
			t.Kind, t.ID, t.Attrs = ArbProgress, id, attrs
		}
	case "preset":
		if id, ok := attrs["id"]; ok && strings.HasSuffix(raw, ">") {
			t.Kind, t.ID = Preset, id
		}
	case "color":
		t.Kind, t.Attrs = Color, attrs
	case "style":
		if id, ok := attrs["id"]; ok {
			t.Kind, t.ID = Style, id
		}
	case "pushStream", "component", "compDef":
		if id, ok := attrs["id"]; ok {
			t.Kind, t.ID = PushStream, id
		}
	case "clearStream":
		if id, ok := attrs["id"]; ok && isWord(id) && strings.HasSuffix(raw, "/>") {
			t.Kind, t.ID = ClearStream, id
		}
	case "popStream", "/popStream":
		t.Kind = PopStream
	case "indicator":
		id := attrs["id"]
		vis := attrs["visible"]
		if strings.HasPrefix(id, "Icon") && isUpper(id[4:]) && (vis == "y" || vis == "n") {
			t.Kind, t.ID, t.Value = Icon, strings.ToLower(id[4:]), vis
		}
	case "image":
		if id, ok := attrs["id"]; ok && bodyParts[id] {
			if n, ok := attrs["name"]; ok {
				t.Kind, t.ID, t.Value = Image, id, n
			}
		}
	case "LaunchURL":
		if src, ok := attrs["src"]; ok && src != "" {
			t.Kind, t.Value = LaunchURL, src
		}
	case "a":
		t.Kind, t.Attrs = Anchor, attrs
	}
	return t
}

var bodyParts = map[string]bool{
	"back": true, "leftHand": true, "rightHand": true, "head": true,
	"rightArm": true, "abdomen": true, "leftEye": true, "leftArm": true,
	"chest": true, "rightLeg": true, "neck": true, "leftLeg": true,
	"nsys": true, "rightEye": true,
}

func classifyPrompt(t Tag, attrs map[string]string) Tag {
	const suffix = "&gt;</prompt>"
	tm, ok := attrs["time"]
	if !ok || !isDigits(tm) || !strings.HasSuffix(t.Raw, suffix) {
		return t
	}
	open := strings.IndexByte(t.Raw, '>')
	if open < 0 || open+1 > len(t.Raw)-len(suffix) {
		return t
	}
	t.Kind, t.Value, t.Text = Prompt, tm, t.Raw[open+1:len(t.Raw)-len(suffix)]
	return t
}

// tagName returns the element name, keeping a leading '/' for
// closing tags.
func tagName(raw string) string {
	i := 1
	if i < len(raw) && raw[i] == '/' {
		i++
	}
	j := i
	for j < len(raw) && (isWordByte(raw[j])) {
		j++
	}
	return raw[1:j]
}

// innerText returns the content between the opening tag and </name>.
func innerText(raw, name string) (string, bool) {
	closing := "</" + name + ">"
	if !strings.HasSuffix(raw, closing) {
		return "", false
	}
	open := strings.IndexByte(raw, '>')
	if open < 0 || open+1 > len(raw)-len(closing) {
		return "", false
	}
	return raw[open+1 : len(raw)-len(closing)], true
}

// parseAttrs reads name='value' and name="value" pairs from the opening
// tag.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	end := strings.IndexByte(raw, '>')
	if end < 0 {
		end = len(raw)
	}
	s := raw[:end]
	i := 1
	for i < len(s) && s[i] != ' ' {
		i++
	}
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '/') {
			i++
		}
		k := i
		for i < len(s) && isWordByte(s[i]) {
			i++
		}
		name := s[k:i]
		if name == "" || i+1 >= len(s) || s[i] != '=' || (s[i+1] != '\'' && s[i+1] != '"') {
			if i < len(s) {
				i++
			}
			continue
		}
		q := s[i+1]
		v := i + 2
		close := strings.IndexByte(s[v:], q)
		if close < 0 {
			break
		}
		attrs[name] = s[v : v+close]
		i = v + close + 1
	}
	return attrs
}

func dirs(raw string) []string {
	var out []string
	const marker = `<dir value="`
	for {
		i := strings.Index(raw, marker)
		if i < 0 {
			return out
		}
		raw = raw[i+len(marker):]
		j := strings.IndexByte(raw, '"')
		if j < 0 {
			return out
		}
		out = append(out, raw[:j])
		raw = raw[j:]
	}
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isWordByte(s[i]) {
			return false
		}
	}
	return true
}

func isAlnum(s string) bool { return isWord(s) && !strings.Contains(s, "_") }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isUpper(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
