package stream

import (
	"regexp"
	"strings"

	"github.com/strnglp/ProfanityFE/internal/span"
	"github.com/strnglp/ProfanityFE/pkg/timeutil"
)

// DeathFG colours the area and time of a compacted death notice.
const DeathFG = "ff0000"

// deathAreas maps each death message to the area code shown for it, in
// match order.
var deathAreas = []struct {
	phrase string
	code   string
}{
	{`just bit the dust!`, "WL"},
	{`echoes in your mind!`, "RIFT"},
	{`just got squashed!`, "CY"},
	{`has gone to feed the fishes!`, "RR"},
	{`life on land appears to be as rough as (?:his|her) life at sea\.`, "KF"},
	{`just turned (?:his|her) last page!`, "TI"},
	{`is off to a rough start!  (?:He|She) was just put on ice!|was just put on ice!`, "IMT"},
	{`just sank to the bottom of the (?:Great Western Sea|Tenebrous Cauldron)!`, "OSA"},
	{`just gave up the ghost!`, "TRAIL"},
	{`just got iced in the Hinterwilds!`, "HW"},
	{`just punched a one-way ticket!`, "KD"},
	{`is going home on (?:his|her) shield!`, "TV"},
	{`just took a long walk off of a short pier!`, "SOL"},
	{`is dust in the wind!`, "FWI"},
	{`is six hundred feet under!`, "ZUL"},
	{`just lost (?:his|her) way somewhere in the Settlement of Reim!`, "REIM"},
	{`flame just burnt out in the Sea of Fire!`, "SOS"},
	{`failed within the Bank at Bloodriven`, "DR-B"},
	{`was just defeated in Duskruin Arena!`, "DR-A"},
	{`was just defeated during round \d+ in (?:Endless )?Duskruin Arena!`, "DR-A"},
	{`was just defeated in the Arena of the Abyss!`, "EG-A"},
	{`failed to bring a shrubbery to the Night at the Academy!`, "NATA"},
	{`is off to a rough start!  (?:He|She) just bit the dust!`, "WL"},
}

var (
	deathLine     *regexp.Regexp
	deathArea     []*regexp.Regexp
	deathDropLine = regexp.MustCompile(`^\s\*\s(?:The death cry of )?[7A-Z][a-z]+(?:['s]*) (?:has been vaporized!|was just incinerated!)`)
	logonLine     = regexp.MustCompile(`^\s\*\s([A-Z][a-z]+) (joins the adventure\.|returns home from a hard day of adventuring\.|has disconnected\.)`)
)

func init() {
	phrases := make([]string, 0, len(deathAreas))
	for _, a := range deathAreas {
		phrases = append(phrases, a.phrase)
		deathArea = append(deathArea, regexp.MustCompile(`^(?:`+a.phrase+`)`))
	}
	deathLine = regexp.MustCompile(`^\s\*\s(The death cry of )?([7A-Z][a-z]+)(?:['s]*) (` + strings.Join(phrases, "|") + `)`)
}

// logonPresets names the preset used for each kind of logon notice.
var logonPresets = map[string]string{
	"joins the adventure.":                         "logons",
	"returns home from a hard day of adventuring.": "logoffs",
	"has disconnected.":                            "disconnects",
}

// death compacts "* Name just bit the dust!" into "Name WL 9:05".
func (r *Router) death(line span.Line) (span.Line, bool) {
	m := deathLine.FindStringSubmatchIndex(line.Text)
	if m == nil {
		if deathDropLine.MatchString(line.Text) {
			return line, false
		}
		return line, true
	}
	front := m[4]
	name := line.Text[m[4]:m[5]]
	phrase := line.Text[m[6]:m[7]]
	code := "??"
	for i, re := range deathArea {
		if re.MatchString(phrase) {
			code = deathAreas[i].code
			break
		}
	}
	text := name + " " + code + " " + timeutil.Clock(r.now())
	out := span.Line{Text: text, Spans: nameSpans(line.Spans, front, len(name))}
	out.Spans = append(out.Spans, span.Span{Start: len(name) + len(code) + 2, End: len(text), FG: DeathFG, Priority: 1})
	return out, true
}

// logon compacts "* Name joins the adventure." into "Name 3:04pm".
func (r *Router) logon(line span.Line) span.Line {
	m := logonLine.FindStringSubmatchIndex(line.Text)
	if m == nil {
		return line
	}
	name := line.Text[m[2]:m[3]]
	kind := line.Text[m[4]:m[5]]
	text := name + " " + timeutil.ClockMeridiem(r.now())
	out := span.Line{Text: text, Spans: nameSpans(line.Spans, m[2], len(name))}
	tail := span.Span{Start: len(name) + 1, End: len(text), Priority: 1}
	tail.FG, tail.BG, _ = r.preset(logonPresets[kind])
	if tail.Styled() {
		out.Spans = append(out.Spans, tail)
	}
	return out
}

// nameSpans moves the spans over the name at offset front to the start
// of the line and trims them to the name.
func nameSpans(spans []span.Span, front, nameLen int) []span.Span {
	return span.Shift(span.Clone(spans), -front, nameLen)
}
