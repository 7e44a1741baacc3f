// Package config loads the settings document (presets, highlights,
// layouts and key bindings) and holds the command-line options.
//
// Settings come from a single YAML file, ~/.profanity/<template>.yaml by
// default. When the file does not exist the embedded defaults are used.
// A file that fails to parse or validate is an error; callers reloading
// at runtime keep the settings they already have.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strnglp/ProfanityFE/internal/highlight"
	"github.com/strnglp/ProfanityFE/internal/keys"
	"github.com/strnglp/ProfanityFE/internal/layout"
	"github.com/strnglp/ProfanityFE/internal/window"
)

//go:embed default.yaml
var defaultSettings []byte

// DefaultLayout is loaded at startup unless --layout names another.
const DefaultLayout = "default"

// Preset is a named colour pair.
type Preset struct {
	FG string `yaml:"fg"`
	BG string `yaml:"bg,omitempty"`
}

// Presets maps preset ids to colours.
type Presets map[string]Preset

// Preset implements the parser and router preset lookups.
func (p Presets) Preset(id string) (fg, bg string, ok bool) {
	v, ok := p[id]
	return v.FG, v.BG, ok
}

// Settings is the decoded settings document.
type Settings struct {
	Presets    Presets                  `yaml:"presets"`
	Highlights []highlight.Rule         `yaml:"highlights"`
	Layouts    map[string]layout.Layout `yaml:"layouts"`
	Keys       []keys.Spec              `yaml:"keys"`
}

// Parse decodes and validates a settings document.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	for name, l := range s.Layouts {
		l.Name = name
		s.Layouts[name] = l
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the embedded settings.
func Default() *Settings {
	s, err := Parse(defaultSettings)
	if err != nil {
		panic(fmt.Sprintf("embedded settings: %v", err))
	}
	return s
}

// LoadFile reads the settings at path, falling back to the embedded
// defaults when the file does not exist.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[INFO] No settings at %s, using built-in defaults", path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Reload reads path again. On failure it logs the error and returns
// prev unchanged.
func Reload(path string, prev *Settings) (*Settings, error) {
	s, err := LoadFile(path)
	if err != nil {
		log.Printf("[WARN] Reload failed, keeping previous settings: %v", err)
		return prev, err
	}
	return s, nil
}

// Validate checks the document for errors that would only show up later.
func (s *Settings) Validate() error {
	var errs []error

	if err := highlight.Validate(s.Highlights); err != nil {
		errs = append(errs, err)
	}
	for name, l := range s.Layouts {
		for i, w := range l.Windows {
			switch w.Class {
			case window.ClassText, window.ClassIndicator, window.ClassProgress, window.ClassCountdown, window.ClassCommand:
			default:
				errs = append(errs, fmt.Errorf("layout %s: window %d: unknown class %q", name, i, w.Class))
			}
			for _, expr := range []string{w.Height, w.Width, w.Top, w.Left} {
				if expr == "" {
					continue
				}
				if _, err := layout.Eval(expr, 24, 80); err != nil {
					errs = append(errs, fmt.Errorf("layout %s: window %d: %w", name, i, err))
				}
			}
		}
	}
	if _, err := keys.Build(s.Keys); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Layout returns the named layout.
func (s *Settings) Layout(name string) (layout.Layout, bool) {
	l, ok := s.Layouts[name]
	return l, ok
}

// LayoutNames lists the layouts in sorted order.
func (s *Settings) LayoutNames() []string {
	names := make([]string, 0, len(s.Layouts))
	for n := range s.Layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Options are the command-line settings.
type Options struct {
	Host string
	Port int
	Char string

	// Template is the settings file name under Dir. SettingsFile, when
	// set, overrides it.
	Template     string
	SettingsFile string
	Dir          string
	LogFile      string
	MetricsAddr  string
	Layout       string

	DefaultFG  string
	DefaultBG  string
	Colors     int
	ColorPairs int

	NoStatus         bool
	Links            bool
	SpeechTimestamps bool
	RemoteURL        bool
}

// DefaultOptions returns the options used when no flag is given.
func DefaultOptions() Options {
	return Options{
		Host:      "127.0.0.1",
		Port:      8000,
		Template:  "default.yaml",
		Dir:       "${HOME}/.profanity",
		LogFile:   "${PROFANITY_DIR}/debug.log",
		Layout:    DefaultLayout,
		DefaultFG: "ffffff",
		DefaultBG: "000000",
	}
}

// Addr is the server address.
func (o Options) Addr() string { return fmt.Sprintf("%s:%d", o.Host, o.Port) }

// Expand resolves ${HOME}, ${PROFANITY_DIR} and ${VAR:-default} in the
// path options.
func (o Options) Expand() Options {
	vars := map[string]string{"HOME": homeDir()}
	o.Dir = expandVars(o.Dir, vars)
	vars["PROFANITY_DIR"] = o.Dir
	o.SettingsFile = expandVars(o.SettingsFile, vars)
	o.LogFile = expandVars(o.LogFile, vars)
	return o
}

// SettingsPath is the settings file to load.
func (o Options) SettingsPath() string {
	if o.SettingsFile != "" {
		return o.SettingsFile
	}
	name := o.Template
	if filepath.Ext(name) == "" {
		name += ".yaml"
	}
	return filepath.Join(o.Dir, name)
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, def := parts[1], parts[2]
		if v, ok := vars[name]; ok && v != "" {
			return v
		}
		if v := os.Getenv(name); v != "" {
			return v
		}
		return def
	})
}
