// Package timer tracks the named countdowns (roundtime, casttime and
// stuns) and runs the short-lived poll tasks that keep them on screen.
//
// Every end-time carries a generation number taken from a counter shared
// by the engine. A poll task remembers the generation it was started for
// and retires on the first wake where the timer has moved on, or once
// the remaining time reaches zero.
package timer

import (
	"math"
	"sync"
	"time"
)

// PollInterval is how often a running countdown is re-read.
const PollInterval = 150 * time.Millisecond

// Slot selects one of a timer's two end-times.
type Slot int

const (
	Primary Slot = iota
	Secondary
)

// Well-known timer names.
const (
	Roundtime = "roundtime"
	Stunned   = "stunned"
)

type endTime struct {
	at    time.Time
	gen   uint64
	shown int
}

type entry struct {
	ends   [2]endTime
	active bool
}

// Engine owns every timer. It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	timers map[string]*entry
	gen    uint64

	now    func() time.Time
	notify func()
	sleep  func(time.Duration)

	interval time.Duration
	wg       sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithSleep replaces time.Sleep in the poll loop.
func WithSleep(f func(time.Duration)) Option { return func(e *Engine) { e.sleep = f } }

// WithInterval overrides PollInterval.
func WithInterval(d time.Duration) Option { return func(e *Engine) { e.interval = d } }

// New creates an engine. now returns the current server time; notify is
// called from poll tasks whenever a displayed value changes.
func New(now func() time.Time, notify func(), opts ...Option) *Engine {
	if notify == nil {
		notify = func() {}
	}
	e := &Engine{
		timers:   make(map[string]*entry),
		now:      now,
		notify:   notify,
		sleep:    time.Sleep,
		interval: PollInterval,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) entry(name string) *entry {
	t, ok := e.timers[name]
	if !ok {
		t = &entry{}
		e.timers[name] = t
	}
	return t
}

func remaining(at, now time.Time) int {
	if at.IsZero() {
		return 0
	}
	v := int(math.Ceil(at.Sub(now).Seconds()))
	if v < 0 {
		return 0
	}
	return v
}

// Set moves one end-time of timer name and starts a poll task for it.
// Any task running for the old end-time retires on its next wake.
// It reports the new remaining seconds.
func (e *Engine) Set(name string, slot Slot, at time.Time) int {
	e.mu.Lock()
	e.gen++
	gen := e.gen
	et := &e.entry(name).ends[slot]
	et.at = at
	et.gen = gen
	et.shown = remaining(at, e.now())
	v := et.shown
	e.mu.Unlock()

	if v > 0 {
		e.wg.Add(1)
		go e.poll(name, slot, gen)
	}
	return v
}

// Stun starts the stunned countdown for d from now.
func (e *Engine) Stun(d time.Duration) int {
	return e.Set(Stunned, Primary, e.now().Add(d))
}

func (e *Engine) poll(name string, slot Slot, gen uint64) {
	defer e.wg.Done()
	for {
		e.sleep(e.interval)

		e.mu.Lock()
		et := &e.timers[name].ends[slot]
		if et.gen != gen {
			e.mu.Unlock()
			return
		}
		v := remaining(et.at, e.now())
		changed := v != et.shown
		et.shown = v
		e.mu.Unlock()

		if changed {
			e.notify()
		}
		if v == 0 {
			return
		}
	}
}

// SetActive sets the indicator flag of timer name and reports whether it
// changed.
func (e *Engine) SetActive(name string, active bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.entry(name)
	if t.active == active {
		return false
	}
	t.active = active
	return true
}

// End returns the configured end-time of a slot.
func (e *Engine) End(name string, slot Slot) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.timers[name]; ok {
		return t.ends[slot].at
	}
	return time.Time{}
}

// Remaining returns the whole seconds left on both end-times of timer
// name and its indicator flag.
func (e *Engine) Remaining(name string) (primary, secondary int, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.timers[name]
	if !ok {
		return 0, 0, false
	}
	now := e.now()
	return remaining(t.ends[Primary].at, now), remaining(t.ends[Secondary].at, now), t.active
}

// Wait blocks until every running poll task has retired.
func (e *Engine) Wait() { e.wg.Wait() }
