package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/strnglp/ProfanityFE/internal/highlight"
	"github.com/strnglp/ProfanityFE/internal/span"
)

var entities = []struct {
	name string
	ch   byte
}{
	{"&lt;", '<'},
	{"&gt;", '>'},
	{"&quot;", '"'},
	{"&apos;", '\''},
	{"&amp;", '&'},
}

type entity struct{ at, n int }

// Unescape replaces the XML entities in s in a single left-to-right
// pass. The returned function maps an offset in s to the matching offset
// in the result; an offset inside an entity maps just past its
// replacement. The function is nil when s held no entity.
func Unescape(s string) (string, func(int) int) {
	if !strings.Contains(s, "&") {
		return s, nil
	}
	var b strings.Builder
	var ents []entity
	for i := 0; i < len(s); {
		matched := false
		if s[i] == '&' {
			for _, e := range entities {
				if strings.HasPrefix(s[i:], e.name) {
					b.WriteByte(e.ch)
					ents = append(ents, entity{at: i, n: len(e.name)})
					i += len(e.name)
					matched = true
					break
				}
			}
		}
		if !matched {
			b.WriteByte(s[i])
			i++
		}
	}
	if len(ents) == 0 {
		return s, nil
	}
	return b.String(), func(x int) int {
		shift := 0
		for _, e := range ents {
			if x <= e.at {
				break
			}
			if x < e.at+e.n {
				return e.at - shift + 1
			}
			shift += e.n - 1
		}
		return x - shift
	}
}

// finalize turns a flushed segment into a line: it unescapes the text,
// runs the text triggers, closes every open span at the end and reopens
// it at 0 for the next segment, and overlays highlights.
func (p *Parser) finalize(stream, text string, spans []span.Span, open *openSet, triggers bool) span.Line {
	text, remap := Unescape(text)
	if remap != nil {
		for i := range spans {
			spans[i].Start = remap(spans[i].Start)
			spans[i].End = remap(spans[i].End)
		}
		open.each(func(s *span.Span) { s.Start = remap(s.Start) })
	}
	if triggers {
		p.triggers(text)
	}

	n := len(text)
	open.each(func(s *span.Span) {
		c := *s
		c.End = n
		if c.Styled() {
			spans = append(spans, c)
		}
		s.Start = 0
	})

	if hl := p.cfg.Highlights; hl != nil && highlight.Applies(stream, p.mapped(stream)) {
		spans = append(spans, hl.Apply(text)...)
	}
	return span.Line{Text: text, Spans: span.Clamp(spans, n)}
}

func (p *Parser) mapped(stream string) bool {
	return stream != "" && p.cfg.Windows != nil && p.cfg.Windows.Stream(stream) != nil
}

var (
	echoedPrompt = regexp.MustCompile(`^\[.*?\]>`)
	stunRounds   = regexp.MustCompile(`^\s*You are stunned for ([0-9]+) rounds?`)
	shadowValley = regexp.MustCompile(`^Just as you think the falling will never end, you crash through an ethereal barrier which bursts into a dazzling kaleidoscope of color!`)
	raiseDead    = regexp.MustCompile(strings.Join([]string{
		`^Your surroundings grow dim\.\.\.you lapse into a state of awareness only, unable to do anything\.\.\.$`,
		`^As .*? begins to chant, your spirit is drawn closer to your body by the scent of dusty, dry parchment\.`,
		`^Murmuring softly, you call upon your connection with the Destroyer,? and feel your words twist into an alien, spidery chant\.`,
		`^Rich and lively, the scent of wild flowers suddenly fills the air as you finish your chant, and you feel alive with the energy of spring\.`,
		`^Deep and resonating, you feel the chant that falls from your lips instill within you with the strength of your faith\.`,
	}, "|"))
	nsysConvulsions = regexp.MustCompile(`^You have.*?(?:case of uncontrollable convulsions|case of sporadic convulsions|strange case of muscle twitching)`)
	nsysRanks       = []struct {
		re   *regexp.Regexp
		rank int
	}{
		{regexp.MustCompile(`^You have.*? very difficult time with muscle control`), 3},
		{regexp.MustCompile(`^You have.*? constant muscle spasms`), 2},
		{regexp.MustCompile(`^You have.*? developed slurred speech`), 1},
	}
)

// Stun durations that are not given in the text.
const (
	StunPerRound     = 5 * time.Second
	ShadowValleyStun = 16200 * time.Millisecond
	RaiseDeadStun    = 30600 * time.Millisecond
)

func (p *Parser) triggers(text string) {
	switch {
	case echoedPrompt.MatchString(text):
		p.cfg.Session.SetNeedPrompt(false)
	case stunRounds.MatchString(text):
		m := stunRounds.FindStringSubmatch(text)
		rounds, _ := strconv.Atoi(m[1])
		p.cfg.Timers.Stun(time.Duration(rounds) * StunPerRound)
	case raiseDead.MatchString(text):
		p.cfg.Timers.Stun(RaiseDeadStun)
	case shadowValley.MatchString(text):
		p.cfg.Timers.Stun(ShadowValleyStun)
	case nsysConvulsions.MatchString(text):
		// The image tag carries the wound rank for these.
	default:
		w := p.cfg.Windows.Indicator("nsys")
		if w == nil {
			return
		}
		for _, r := range nsysRanks {
			if r.re.MatchString(text) {
				w.Update(r.rank)
				return
			}
		}
	}
}
