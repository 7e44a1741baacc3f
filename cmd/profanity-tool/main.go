// Command profanity-tool provides offline helpers for settings and server transcripts.
//
// Usage:
//
//	profanity-tool <command> [flags]
//
// Commands:
//
//	layout    Place a layout at a terminal size and print the geometry
//	parse     Run a raw server transcript through the parser
//	version   Print version information
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/strnglp/ProfanityFE/internal/config"
	"github.com/strnglp/ProfanityFE/internal/highlight"
	"github.com/strnglp/ProfanityFE/internal/layout"
	"github.com/strnglp/ProfanityFE/internal/parser"
	"github.com/strnglp/ProfanityFE/internal/session"
	"github.com/strnglp/ProfanityFE/internal/span"
	"github.com/strnglp/ProfanityFE/internal/store"
	"github.com/strnglp/ProfanityFE/internal/stream"
	"github.com/strnglp/ProfanityFE/internal/timer"
	"github.com/strnglp/ProfanityFE/internal/window"
	"github.com/strnglp/ProfanityFE/pkg/jsonutil"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "layout":
		cmdLayout(os.Args[2:])
	case "parse":
		cmdParse(os.Args[2:])
	case "version":
		fmt.Printf("profanity-tool v%s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`profanity-tool: offline helpers for ProfanityFE

Usage:
  profanity-tool <command> [flags]

Commands:
  layout     Place a layout at a terminal size and print the geometry
  parse      Run a raw server transcript through the parser
  version    Print version information

Run 'profanity-tool <command> --help' for details on each command.`)
}

// loadSettings reads path, or the built-in settings when path is empty.
func loadSettings(path string) *config.Settings {
	if path == "" {
		return config.Default()
	}
	s, err := config.LoadFile(path)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	return s
}

func pickLayout(s *config.Settings, name string) layout.Layout {
	l, ok := s.Layout(name)
	if !ok {
		log.Fatalf("No layout %q (have: %s)", name, strings.Join(s.LayoutNames(), ", "))
	}
	return l
}

type placed struct {
	Key    string       `json:"key"`
	Class  window.Class `json:"class"`
	Top    int          `json:"top"`
	Left   int          `json:"left"`
	Height int          `json:"height"`
	Width  int          `json:"width"`
}

// cmdLayout prints where each window of a layout lands.
func cmdLayout(args []string) {
	fs := pflag.NewFlagSet("layout", pflag.ExitOnError)
	settingsPath := fs.String("settings", "", "Settings file (default: built-in settings)")
	name := fs.String("name", config.DefaultLayout, "Layout name")
	lines := fs.Int("lines", 24, "Terminal rows")
	cols := fs.Int("cols", 80, "Terminal columns")
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Parse(args)

	s := loadSettings(*settingsPath)
	m := layout.NewManager(timer.New(time.Now, func() {}))
	m.Load(pickLayout(s, *name), *lines, *cols)

	var out []placed
	for _, w := range m.Windows() {
		r := w.Rect()
		out = append(out, placed{Key: w.Key(), Class: w.Class(), Top: r.Top, Left: r.Left, Height: r.Height, Width: r.Width})
	}

	if *asJSON {
		fmt.Println(jsonutil.PrettyJSON(jsonutil.MustMarshal(out)))
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tCLASS\tTOP\tLEFT\tHEIGHT\tWIDTH")
	for _, p := range out {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", p.Key, p.Class, p.Top, p.Left, p.Height, p.Width)
	}
	tw.Flush()
}

// collector records routed lines in arrival order.
type collector struct{ entries []*store.Entry }

func (c *collector) Record(stream string, line span.Line) {
	c.entries = append(c.entries, &store.Entry{
		LineID: int64(len(c.entries) + 1),
		Stream: stream,
		Text:   line.Text,
		Spans:  line.Spans,
	})
}

// cmdParse feeds a transcript file (or stdin) through the parser and
// router and prints every line that reached a window.
func cmdParse(args []string) {
	fs := pflag.NewFlagSet("parse", pflag.ExitOnError)
	settingsPath := fs.String("settings", "", "Settings file (default: built-in settings)")
	name := fs.String("layout", config.DefaultLayout, "Layout name")
	lines := fs.Int("lines", 50, "Terminal rows")
	cols := fs.Int("cols", 160, "Terminal columns")
	asJSON := fs.Bool("json", false, "Print one JSON object per line, with spans")
	links := fs.Bool("links", false, "Highlight links")
	fs.Parse(args)

	var in io.Reader = os.Stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			log.Fatalf("Failed to open transcript: %v", err)
		}
		defer f.Close()
		in = f
	}

	s := loadSettings(*settingsPath)
	sess := session.New("")
	sess.Links = *links
	timers := timer.New(func() time.Time { return sess.ServerNow(time.Now()) }, func() {})
	m := layout.NewManager(timers)
	m.Load(pickLayout(s, *name), *lines, *cols)

	rec := &collector{}
	router := stream.New(m, sess, s.Presets, rec, stream.Options{})
	p := parser.New(parser.Config{
		Presets:    s.Presets,
		Highlights: highlight.New(s.Highlights),
		Session:    sess,
		Timers:     timers,
		Windows:    m,
		Router:     router,
		RemoteURL:  true,
		Now:        time.Now,
	})

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		p.Feed(strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}

	for _, e := range rec.entries {
		if *asJSON {
			fmt.Println(jsonutil.MustMarshal(e))
			continue
		}
		id := e.Stream
		if id == "" {
			id = "main"
		}
		fmt.Printf("[%s] %s\n", id, e.Text)
	}
}
