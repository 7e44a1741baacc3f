package store

import (
	"testing"
	"time"

	"github.com/strnglp/ProfanityFE/internal/span"
)

func newTestStore(t *testing.T, opts ...Option) *DBService {
	t.Helper()
	clock := time.Unix(1_700_000_000, 0)
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	s, err := NewDBService(":memory:", opts...)
	if err != nil {
		t.Fatalf("NewDBService: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndSearch(t *testing.T) {
	s := newTestStore(t)
	s.Record("", span.Line{Text: "A goblin arrives.", Spans: []span.Span{{Start: 2, End: 8, FG: "d2bc2a", Monsterbold: true}}})
	s.Record("speech", span.Line{Text: `Mira says, "Goblins ahead."`})
	s.Record("", span.Line{Text: ""})
	s.Record("", span.Line{Text: "Obvious paths: north"})

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 lines (empty skipped), got %d", n)
	}

	got, err := s.Search("goblin", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Stream != "speech" {
		t.Errorf("newest match first, got stream %q", got[0].Stream)
	}
	first := got[1]
	if len(first.Spans) != 1 || first.Spans[0].FG != "d2bc2a" || !first.Spans[0].Monsterbold {
		t.Errorf("spans did not round trip: %+v", first.Spans)
	}
	if first.Time().Unix() != 1_700_000_000 {
		t.Errorf("timestamp %v", first.Time())
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	s.Record("", span.Line{Text: "100% done"})
	s.Record("", span.Line{Text: "1000 done"})
	s.Record("", span.Line{Text: "snake_case"})
	s.Record("", span.Line{Text: "snakeXcase"})

	if got, _ := s.Search("0%", 10); len(got) != 1 || got[0].Text != "100% done" {
		t.Errorf("percent should be literal, got %v", got)
	}
	if got, _ := s.Search("e_c", 10); len(got) != 1 || got[0].Text != "snake_case" {
		t.Errorf("underscore should be literal, got %v", got)
	}
}

func TestRecent(t *testing.T) {
	s := newTestStore(t)
	for _, text := range []string{"one", "two", "three"} {
		s.Record("thoughts", span.Line{Text: text})
	}
	s.Record("", span.Line{Text: "main"})

	got, err := s.Recent("thoughts", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Text != "three" || got[1].Text != "two" {
		t.Errorf("unexpected recent lines %+v", got)
	}
}

func TestBatchFlushAndPrune(t *testing.T) {
	s := newTestStore(t, WithBatchSize(2), WithMaxLines(3))
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		s.Record("", span.Line{Text: text})
	}
	s.mu.Lock()
	pending := len(s.pending)
	s.mu.Unlock()
	if pending != 1 {
		t.Errorf("expected one buffered line after two batch writes, got %d", pending)
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	n, _ := s.Count()
	if n != 3 {
		t.Errorf("expected table pruned to 3 lines, got %d", n)
	}
	got, _ := s.Recent("", 10)
	if len(got) != 3 || got[2].Text != "c" {
		t.Errorf("oldest lines should be pruned, got %+v", got)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a\b%c_d`); got != `a\\b\%c\_d` {
		t.Errorf("escapeLike = %q", got)
	}
}
