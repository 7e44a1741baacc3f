package timer

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type harness struct {
	clock   *fakeClock
	steps   chan struct{}
	flushes chan struct{}
	engine  *Engine
}

func newHarness(start time.Time) *harness {
	h := &harness{
		clock:   &fakeClock{now: start},
		steps:   make(chan struct{}, 16),
		flushes: make(chan struct{}, 16),
	}
	h.engine = New(h.clock.Now, func() { h.flushes <- struct{}{} },
		WithSleep(func(time.Duration) { <-h.steps }))
	return h
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.steps <- struct{}{}
	}
}

func TestRoundtimeRetiresAtZero(t *testing.T) {
	start := time.Unix(12340, 0)
	h := newHarness(start)

	end := time.Unix(12345, 0)
	if v := h.engine.Set(Roundtime, Primary, end); v != 5 {
		t.Fatalf("expected 5 seconds remaining, got %d", v)
	}
	if got := h.engine.End(Roundtime, Primary); !got.Equal(end) {
		t.Fatalf("end-time not stored: %v", got)
	}

	h.clock.Set(end)
	h.step(4)
	h.engine.Wait()

	if len(h.flushes) != 1 {
		t.Errorf("expected exactly one flush for the change to zero, got %d", len(h.flushes))
	}
	if p, _, _ := h.engine.Remaining(Roundtime); p != 0 {
		t.Errorf("expected zero remaining, got %d", p)
	}
}

func TestPollFlushesOnlyOnChange(t *testing.T) {
	start := time.Unix(1000, 0)
	h := newHarness(start)
	h.engine.Set(Roundtime, Primary, start.Add(3*time.Second))

	h.step(1)
	select {
	case <-h.flushes:
		t.Fatal("unchanged value must not flush")
	case <-time.After(20 * time.Millisecond):
	}

	h.clock.Set(start.Add(1500 * time.Millisecond))
	h.step(1)
	<-h.flushes

	h.clock.Set(start.Add(3 * time.Second))
	h.step(1)
	<-h.flushes
	h.engine.Wait()
}

func TestSupersededTaskRetires(t *testing.T) {
	start := time.Unix(2000, 0)
	h := newHarness(start)

	h.engine.Set(Roundtime, Primary, start.Add(5*time.Second))
	h.engine.Set(Roundtime, Primary, start.Add(3*time.Second))

	h.clock.Set(start.Add(3 * time.Second))
	h.step(4)
	h.engine.Wait()

	if len(h.flushes) != 1 {
		t.Errorf("only the live task may flush, got %d flushes", len(h.flushes))
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	start := time.Unix(3000, 0)
	h := newHarness(start)
	h.engine.Set(Roundtime, Primary, start.Add(2*time.Second))
	h.engine.Set(Roundtime, Secondary, start.Add(4*time.Second))

	p, s, _ := h.engine.Remaining(Roundtime)
	if p != 2 || s != 4 {
		t.Fatalf("expected 2/4, got %d/%d", p, s)
	}
	h.clock.Set(start.Add(4 * time.Second))
	h.step(8)
	h.engine.Wait()
	if len(h.flushes) != 2 {
		t.Errorf("expected one flush per slot, got %d", len(h.flushes))
	}
}

func TestStunAndActive(t *testing.T) {
	start := time.Unix(4000, 0)
	h := newHarness(start)
	if v := h.engine.Stun(16200 * time.Millisecond); v != 17 {
		t.Errorf("expected 17 whole seconds, got %d", v)
	}
	if !h.engine.SetActive(Stunned, true) {
		t.Error("expected active change")
	}
	if h.engine.SetActive(Stunned, true) {
		t.Error("repeat should report no change")
	}
	if _, _, a := h.engine.Remaining(Stunned); !a {
		t.Error("expected active flag")
	}
	h.clock.Set(start.Add(time.Minute))
	h.step(2)
	h.engine.Wait()
}
