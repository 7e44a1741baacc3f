package highlight

import (
	"sync"
	"testing"
)

func TestApplyNonOverlappingMatches(t *testing.T) {
	e := New([]Rule{{Pattern: "aa", FG: "FF0000"}})
	spans := e.Apply("aaaaa")
	if len(spans) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 2 || spans[1].Start != 2 || spans[1].End != 4 {
		t.Errorf("unexpected spans %+v", spans)
	}
	if spans[0].FG != "ff0000" {
		t.Errorf("expected normalized colour, got %q", spans[0].FG)
	}
}

func TestApplySkipsEmptyMatches(t *testing.T) {
	e := New([]Rule{{Pattern: "x*", FG: "ffffff"}})
	spans := e.Apply("abxxc")
	if len(spans) != 1 || spans[0].Start != 2 || spans[0].End != 4 {
		t.Errorf("unexpected spans %+v", spans)
	}
}

func TestInvalidPatternSkipped(t *testing.T) {
	e := New([]Rule{{Pattern: "("}, {Pattern: "ok", BG: "000080", Priority: 3}})
	if e.Len() != 1 {
		t.Fatalf("expected 1 live rule, got %d", e.Len())
	}
	spans := e.Apply("is ok")
	if len(spans) != 1 || spans[0].Priority != 3 || spans[0].BG != "000080" {
		t.Errorf("unexpected spans %+v", spans)
	}
	if err := Validate([]Rule{{Pattern: "("}}); err == nil {
		t.Error("expected validation error")
	}
}

func TestReplaceIsAtomic(t *testing.T) {
	a := []Rule{{Pattern: "one"}, {Pattern: "two"}}
	b := []Rule{{Pattern: "three"}}
	e := New(a)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				e.Replace(b)
			} else {
				e.Replace(a)
			}
		}
	}()
	for i := 0; i < 200; i++ {
		// A mixed map would match "one" and "three" together.
		spans := e.Apply("one two three")
		if len(spans) == 3 {
			t.Fatalf("saw a partial rule set: %+v", spans)
		}
	}
	wg.Wait()
}

func TestApplies(t *testing.T) {
	cases := []struct {
		stream string
		mapped bool
		want   bool
	}{
		{"", false, true},
		{"inv", true, true},
		{"inv", false, false},
		{"death", false, true},
		{"room players", false, true},
		{"spellfront", false, false},
	}
	for _, c := range cases {
		if got := Applies(c.stream, c.mapped); got != c.want {
			t.Errorf("Applies(%q,%v) = %v", c.stream, c.mapped, got)
		}
	}
}
