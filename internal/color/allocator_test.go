package color

import (
	"testing"

	"github.com/muesli/termenv"
)

type recordingProgrammer struct {
	colors map[int][3]int
	pairs  map[int][2]int
	inits  int
}

func newRecorder() *recordingProgrammer {
	return &recordingProgrammer{colors: map[int][3]int{}, pairs: map[int][2]int{}}
}

func (r *recordingProgrammer) InitColor(id, red, green, blue int) error {
	r.colors[id] = [3]int{red, green, blue}
	r.inits++
	return nil
}

func (r *recordingProgrammer) InitPair(id, fg, bg int) error {
	r.pairs[id] = [2]int{fg, bg}
	return nil
}

func TestColorHitReturnsSameSlot(t *testing.T) {
	rec := newRecorder()
	a := NewAllocator(4, 4, rec, "ffffff", "000000")

	first := a.Color("FF0000")
	second := a.Color("ff0000")
	if first != second {
		t.Fatalf("expected same slot for same code, got %d and %d", first, second)
	}
	if rec.inits != 1 {
		t.Errorf("expected one register write, got %d", rec.inits)
	}
	if got := rec.colors[first]; got != [3]int{1000, 0, 0} {
		t.Errorf("expected red scaled to 1000,0,0, got %v", got)
	}
}

func TestCapacityOneReusesSlot(t *testing.T) {
	rec := newRecorder()
	a := NewAllocator(1, 4, rec, "ffffff", "000000")

	if id := a.Color("aaaaaa"); id != 0 {
		t.Fatalf("A: expected slot 0, got %d", id)
	}
	if id := a.Color("bbbbbb"); id != 0 {
		t.Fatalf("B: expected slot 0, got %d", id)
	}
	if a.LiveColors() != 1 {
		t.Fatalf("expected one live mapping after B, got %d", a.LiveColors())
	}
	if id := a.Color("aaaaaa"); id != 0 {
		t.Fatalf("A again: expected slot 0, got %d", id)
	}
	if rec.inits != 3 {
		t.Errorf("A must be programmed again after eviction, got %d writes", rec.inits)
	}
	if a.LiveColors() != 1 {
		t.Errorf("expected one live mapping, got %d", a.LiveColors())
	}
}

func TestEvictionIsAllocationOrder(t *testing.T) {
	a := NewAllocator(2, 4, newRecorder(), "ffffff", "000000")

	x := a.Color("111111")
	y := a.Color("222222")
	// A lookup hit does not refresh x's position.
	a.Color("111111")
	z := a.Color("333333")
	if z != x {
		t.Fatalf("expected oldest allocation (%d) to be reused, got %d", x, z)
	}
	if got := a.Color("222222"); got != y {
		t.Errorf("222222 should still live in slot %d, got %d", y, got)
	}
}

func TestEvictingColorInvalidatesPairs(t *testing.T) {
	rec := newRecorder()
	a := NewAllocator(3, 8, rec, "ffffff", "000000")

	p1 := a.Pair("ff0000", "000000")
	if again := a.Pair("ff0000", "000000"); again != p1 {
		t.Fatalf("pair hit should be stable, got %d then %d", p1, again)
	}
	live := a.LivePairs()

	// Fill the third register, then force ff0000's register to recycle.
	a.Color("00ff00")
	a.Color("0000ff")
	if a.LivePairs() >= live {
		t.Fatalf("expected pair referencing evicted colour to be dropped, live=%d", a.LivePairs())
	}
	p2 := a.Pair("ff0000", "000000")
	if p2 == p1 {
		t.Errorf("stale pair id %d reused without reprogramming", p1)
	}
}

func TestPairDefaults(t *testing.T) {
	rec := newRecorder()
	a := NewAllocator(8, 8, rec, "FFFFFF", "000000")
	id := a.Pair("", "")
	cs := rec.pairs[id]
	if rec.colors[cs[0]] != [3]int{1000, 1000, 1000} {
		t.Errorf("default fg should be white, got %v", rec.colors[cs[0]])
	}
	if rec.colors[cs[1]] != [3]int{0, 0, 0} {
		t.Errorf("default bg should be black, got %v", rec.colors[cs[1]])
	}
}

func TestPairCapacityBounded(t *testing.T) {
	a := NewAllocator(16, 2, newRecorder(), "ffffff", "000000")
	codes := []string{"111111", "222222", "333333", "444444"}
	for _, c := range codes {
		a.Pair(c, "")
		if a.LivePairs() > 2 {
			t.Fatalf("live pairs exceed capacity: %d", a.LivePairs())
		}
	}
}

func TestRefreshReprogramsLiveColors(t *testing.T) {
	rec := newRecorder()
	a := NewAllocator(4, 4, rec, "ffffff", "000000")
	a.Color("123456")
	a.Color("654321")
	before := rec.inits
	a.Refresh()
	if rec.inits != before+2 {
		t.Errorf("expected 2 reprograms, got %d", rec.inits-before)
	}
}

func TestChannelsInvalid(t *testing.T) {
	if _, _, _, err := Channels("zzz"); err == nil {
		t.Error("expected error for invalid code")
	}
}

func TestCapacityProfiles(t *testing.T) {
	if c, p := Capacity(termenv.ANSI256); c != 256 || p != 32767 {
		t.Errorf("ANSI256: got %d/%d", c, p)
	}
	if c, _ := Capacity(termenv.Ascii); c != 8 {
		t.Errorf("Ascii: got %d colours", c)
	}
}
