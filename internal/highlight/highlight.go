// Package highlight overlays user regex rules onto finalized text.
package highlight

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/strnglp/ProfanityFE/internal/span"
)

// Rule is one configured highlight.
type Rule struct {
	Pattern   string `yaml:"pattern"`
	FG        string `yaml:"fg,omitempty"`
	BG        string `yaml:"bg,omitempty"`
	Underline bool   `yaml:"underline,omitempty"`
	Priority  int    `yaml:"priority,omitempty"`
}

type compiled struct {
	re   *regexp.Regexp
	rule Rule
}

// Engine holds the compiled rule set. Apply and Replace may be called
// from different goroutines.
type Engine struct {
	mu    sync.RWMutex
	rules []compiled
}

// New compiles rules into an engine. Invalid patterns are logged and
// skipped.
func New(rules []Rule) *Engine {
	e := &Engine{}
	e.rules = compile(rules)
	return e
}

// compile keeps the first position of a repeated pattern and the last
// definition of its style.
func compile(rules []Rule) []compiled {
	out := make([]compiled, 0, len(rules))
	byKey := make(map[string]int, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			log.Printf("[WARN] highlight: skipping %q: %v", r.Pattern, err)
			continue
		}
		if i, dup := byKey[r.Pattern]; dup {
			out[i] = compiled{re: re, rule: normalize(r)}
			continue
		}
		byKey[r.Pattern] = len(out)
		out = append(out, compiled{re: re, rule: normalize(r)})
	}
	return out
}

func normalize(r Rule) Rule {
	r.FG = strings.ToLower(strings.TrimPrefix(r.FG, "#"))
	r.BG = strings.ToLower(strings.TrimPrefix(r.BG, "#"))
	return r
}

// Replace swaps in a new rule set. A text segment being highlighted sees
// either the old set or the new one, never a mix.
func (e *Engine) Replace(rules []Rule) {
	next := compile(rules)
	e.mu.Lock()
	e.rules = next
	e.mu.Unlock()
}

// Validate reports the first pattern that does not compile.
func Validate(rules []Rule) error {
	for _, r := range rules {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("highlight %q: %w", r.Pattern, err)
		}
	}
	return nil
}

// Len is the number of live rules.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// Apply returns one span per non-overlapping match of every rule, rules
// in configured order and matches left to right. Empty matches are
// skipped.
func (e *Engine) Apply(text string) []span.Span {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []span.Span
	for _, c := range e.rules {
		for _, loc := range c.re.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			out = append(out, span.Span{
				Start:     loc[0],
				End:       loc[1],
				FG:        c.rule.FG,
				BG:        c.rule.BG,
				Underline: c.rule.Underline,
				Priority:  c.rule.Priority,
			})
		}
	}
	return out
}

var always = map[string]bool{
	"death": true, "logons": true, "thoughts": true, "voln": true,
	"familiar": true, "assess": true, "ooc": true, "shopWindow": true,
	"combat": true, "moonWindow": true, "atmospherics": true, "charprofile": true,
}

// Applies reports whether highlighting runs for text in stream: when there
// is no stream, when the stream has a window, or when the stream is one
// that falls back to main.
func Applies(stream string, mapped bool) bool {
	return stream == "" || mapped || always[stream] || strings.HasPrefix(stream, "room")
}
