package command

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
		arg  string
	}{
		{".quit", Quit, ""},
		{".QUIT", Quit, ""},
		{".KEY", KeyProbe, ""},
		{".fixcolor", FixColor, ""},
		{".Resync", Resync, ""},
		{".reload", Reload, ""},
		{".layout  wide ", Layout, "wide"},
		{".layout", Send, ""},
		{".arrow", Arrow, ""},
		{".e lines-2", Eval, "lines-2"},
		{".E cols/2", Eval, "cols/2"},
		{".Layout tall", Layout, "tall"},
		{".exp", Send, ""},
		{".links", Links, ""},
		{".find Town Square", Find, "Town Square"},
		{".go2 bank", Send, ""},
		{"look", Send, ""},
		{"", Send, ""},
	}
	for _, c := range cases {
		got := Parse(c.in)
		if got.Kind != c.kind || got.Arg != c.arg {
			t.Errorf("Parse(%q) = %v %q, want %v %q", c.in, got.Kind, got.Arg, c.kind, c.arg)
		}
		if got.Line != c.in {
			t.Errorf("Parse(%q) lost the input line: %q", c.in, got.Line)
		}
	}
}

func TestLocal(t *testing.T) {
	if Parse("look").Local() {
		t.Error("plain commands go to the server")
	}
	if !Parse(".arrow").Local() {
		t.Error(".arrow is local")
	}
	if Quit.String() != "quit" {
		t.Errorf("got %q", Quit.String())
	}
}
