package keys

import "testing"

func testTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := Build([]Spec{
		{ID: "return", Action: "send_command"},
		{ID: "up", Action: "previous_command"},
		{ID: "down", Action: "next_command"},
		{ID: "page_up", Action: "scroll_current_window_up_page"},
		{ID: "ctrl+x", Keys: []Spec{
			{ID: "s", Macro: `\xstance offensive\r`},
			{ID: "ctrl+x", Keys: []Spec{{ID: "q", Action: "send_last_command"}}},
		}},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tree
}

func TestPressAction(t *testing.T) {
	tree := testTree(t)
	if r := tree.Press("enter"); r.Action != SendCommand || !r.Bound {
		t.Errorf("enter: %+v", r)
	}
	if r := tree.Press("pgup"); r.Action != ScrollUpPage {
		t.Errorf("pgup: %+v", r)
	}
	if r := tree.Press("a"); r.Bound {
		t.Errorf("unbound key should pass through: %+v", r)
	}
}

func TestChords(t *testing.T) {
	tree := testTree(t)
	if r := tree.Press("ctrl+x"); !r.Pending || !tree.Pending() {
		t.Fatalf("expected a pending chord: %+v", r)
	}
	if r := tree.Press("s"); r.Macro != `\xstance offensive\r` {
		t.Errorf("chord macro: %+v", r)
	}
	if tree.Pending() {
		t.Error("chord should be finished")
	}

	tree.Press("ctrl+x")
	tree.Press("ctrl+x")
	if r := tree.Press("q"); r.Action != SendLastCommand {
		t.Errorf("nested chord: %+v", r)
	}

	tree.Press("ctrl+x")
	if r := tree.Press("z"); !r.Bound || r.Action != "" || r.Macro != "" {
		t.Errorf("unknown chord key should be swallowed: %+v", r)
	}
	if r := tree.Press("enter"); r.Action != SendCommand {
		t.Errorf("chord should reset after a miss: %+v", r)
	}
}

func TestUnknownActionReported(t *testing.T) {
	tree, err := Build([]Spec{{ID: "f1", Action: "launch_rockets"}, {ID: "f2", Action: "switch_arrow_mode"}})
	if err == nil {
		t.Fatal("expected an error for the unknown action")
	}
	if r := tree.Press("f2"); r.Action != SwitchArrowMode {
		t.Errorf("valid bindings should survive: %+v", r)
	}
	if r := tree.Press("f1"); r.Bound {
		t.Errorf("invalid binding should be skipped: %+v", r)
	}
}

func TestToggleArrowMode(t *testing.T) {
	tree := testTree(t)
	if tree.ToggleArrowMode() {
		t.Fatal("first toggle should switch to paging")
	}
	if a, _ := tree.Lookup("down"); a != ScrollDownPage {
		t.Errorf("down bound to %q", a)
	}
	if !tree.ToggleArrowMode() {
		t.Fatal("second toggle should restore history")
	}
	if a, _ := tree.Lookup("up"); a != PreviousCommand {
		t.Errorf("up bound to %q", a)
	}
}

func TestName(t *testing.T) {
	cases := map[string]string{"Return": "enter", "27": "esc", "A": "A", "Ctrl+A": "ctrl+a", "page_down": "pgdown"}
	for in, want := range cases {
		if got := Name(in); got != want {
			t.Errorf("Name(%q) = %q, want %q", in, got, want)
		}
	}
}
