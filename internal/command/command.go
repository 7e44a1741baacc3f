// Package command recognizes the local dot-commands typed at the prompt.
// Anything it does not recognize is sent to the server.
package command

import (
	"regexp"
	"strings"
)

// Kind identifies a command.
type Kind int

const (
	Send Kind = iota
	Quit
	KeyProbe
	FixColor
	Resync
	Reload
	Layout
	Arrow
	Eval
	Links
	Find
)

var kindNames = map[Kind]string{
	Send: "send", Quit: "quit", KeyProbe: "key", FixColor: "fixcolor",
	Resync: "resync", Reload: "reload", Layout: "layout", Arrow: "arrow",
	Eval: "e", Links: "links", Find: "find",
}

func (k Kind) String() string { return kindNames[k] }

// Command is one parsed input line.
type Command struct {
	Kind Kind
	// Arg is the layout name for Layout, the expression for Eval and
	// the search text for Find.
	Arg string
	// Line is the input as typed.
	Line string
}

var commands = []struct {
	re   *regexp.Regexp
	kind Kind
}{
	{regexp.MustCompile(`(?i)^\.quit`), Quit},
	{regexp.MustCompile(`(?i)^\.key`), KeyProbe},
	{regexp.MustCompile(`(?i)^\.fixcolor`), FixColor},
	{regexp.MustCompile(`(?i)^\.resync`), Resync},
	{regexp.MustCompile(`(?i)^\.reload`), Reload},
	{regexp.MustCompile(`(?i)^\.layout\s+(.+)`), Layout},
	{regexp.MustCompile(`(?i)^\.arrow`), Arrow},
	{regexp.MustCompile(`(?i)^\.e (.*)`), Eval},
	{regexp.MustCompile(`(?i)^\.links`), Links},
	{regexp.MustCompile(`(?i)^\.find\s+(.+)`), Find},
}

// Parse classifies line. Matching is by prefix, first match wins.
func Parse(line string) Command {
	if strings.HasPrefix(line, ".") {
		for _, c := range commands {
			m := c.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			cmd := Command{Kind: c.kind, Line: line}
			if len(m) > 1 {
				cmd.Arg = strings.TrimSpace(m[1])
			}
			return cmd
		}
	}
	return Command{Kind: Send, Line: line}
}

// Local reports whether the command is handled without the server.
func (c Command) Local() bool { return c.Kind != Send }
