package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strnglp/ProfanityFE/internal/layout"
	"github.com/strnglp/ProfanityFE/internal/window"
)

func TestDefaultSettings(t *testing.T) {
	s := Default()
	if fg, _, ok := s.Presets.Preset("roomName"); !ok || fg != "ffffff" {
		t.Errorf("roomName preset: %q %v", fg, ok)
	}
	l, ok := s.Layout(DefaultLayout)
	if !ok || l.Name != DefaultLayout {
		t.Fatalf("default layout missing")
	}

	m := layout.NewManager(nil)
	m.Load(l, 40, 120)
	if m.Stream("main") == nil || m.Command() == nil {
		t.Fatal("default layout should have main and command windows")
	}
	if w := m.Window(layout.PromptKey); w == nil || w.Class() != window.ClassIndicator {
		t.Error("default layout should have a prompt indicator")
	}
	if got := s.LayoutNames(); len(got) != 2 || got[0] != "default" || got[1] != "wide" {
		t.Errorf("layout names %v", got)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"yaml":      "presets: [",
		"highlight": "highlights:\n  - { pattern: '(' }\n",
		"class":     "layouts:\n  x:\n    windows:\n      - { class: box, value: a }\n",
		"geometry":  "layouts:\n  x:\n    windows:\n      - { class: text, value: a, height: 'rows-1' }\n",
		"action":    "keys:\n  - { id: f1, action: dance }\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if _, ok := s.Layout(DefaultLayout); !ok {
		t.Error("expected built-in defaults")
	}
}

func TestReloadKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("presets:\n  speech: { fg: '00ff00' }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prev, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if err := os.WriteFile(path, []byte("highlights:\n  - { pattern: '[' }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Reload(path, prev)
	if err == nil {
		t.Fatal("expected reload error")
	}
	if got != prev {
		t.Error("failed reload must return the previous settings")
	}

	if err := os.WriteFile(path, []byte("presets:\n  speech: { fg: '0000ff' }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = Reload(path, prev)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if fg, _, _ := got.Presets.Preset("speech"); fg != "0000ff" {
		t.Errorf("reloaded preset %q", fg)
	}
}

func TestOptionsPaths(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	o := DefaultOptions()
	o.Template = "wizard"
	o = o.Expand()
	if o.Dir != "/home/tester/.profanity" && !strings.HasSuffix(o.Dir, "/.profanity") {
		t.Errorf("dir %q", o.Dir)
	}
	if got := o.SettingsPath(); got != filepath.Join(o.Dir, "wizard.yaml") {
		t.Errorf("settings path %q", got)
	}
	if o.LogFile != filepath.Join(o.Dir, "debug.log") {
		t.Errorf("log file %q", o.LogFile)
	}
	if o.Addr() != "127.0.0.1:8000" {
		t.Errorf("addr %q", o.Addr())
	}

	o.SettingsFile = "/tmp/custom.yaml"
	if o.SettingsPath() != "/tmp/custom.yaml" {
		t.Error("explicit settings file should win")
	}
}

func TestExpandVarsDefault(t *testing.T) {
	if got := expandVars("${PROFANITY_UNSET_VAR:-fallback}/x", nil); got != "fallback/x" {
		t.Errorf("got %q", got)
	}
}
