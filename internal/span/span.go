// Package span defines the styled text ranges produced by the tag parser
// and the deterministic rule used to composite overlapping ranges onto
// terminal cells.
//
// Offsets are byte offsets into the line's text. The parser, the
// highlight engine and the router all work on byte offsets because that
// is what regexp reports; the window layer converts to cells when drawing.
package span

import "sort"

// Span is a range [Start, End) of a line carrying display attributes.
// Empty FG/BG mean "unset" and fall through to lower ranked spans or the
// window default.
type Span struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	FG        string `json:"fg,omitempty"`
	BG        string `json:"bg,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Priority  int    `json:"priority,omitempty"`

	// Monsterbold breaks priority ties in favour of bold creature names.
	Monsterbold bool `json:"monsterbold,omitempty"`
}

// Styled reports whether the span carries any attribute at all.
func (s Span) Styled() bool {
	return s.FG != "" || s.BG != "" || s.Underline
}

// Line is one finalized unit of text with its spans.
type Line struct {
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
}

// Clone returns a deep copy of the line.
func (l Line) Clone() Line {
	return Line{Text: l.Text, Spans: Clone(l.Spans)}
}

// Clone copies a span slice.
func Clone(spans []Span) []Span {
	if spans == nil {
		return nil
	}
	out := make([]Span, len(spans))
	copy(out, spans)
	return out
}

// Clamp forces every span into [0, n] in place and drops the ones left
// empty.
func Clamp(spans []Span, n int) []Span {
	out := spans[:0]
	for _, s := range spans {
		s.Start = clampInt(s.Start, 0, n)
		s.End = clampInt(s.End, s.Start, n)
		if s.Start == s.End {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Shift moves every span by delta and clamps the result into [0, n].
// Spans that end up empty are removed.
func Shift(spans []Span, delta, n int) []Span {
	for i := range spans {
		spans[i].Start += delta
		spans[i].End += delta
	}
	return Clamp(spans, n)
}

// Attr is the resolved style of a single byte position.
type Attr struct {
	FG        string
	BG        string
	Underline bool
}

// Resolve composites spans into one Attr per byte of a text of length n.
//
// For each attribute independently, the first span that sets it wins in
// this order: higher Priority, then Monsterbold, then the span added
// later. Positions no span covers get the zero Attr.
func Resolve(spans []Span, n int) []Attr {
	attrs := make([]Attr, n)
	if n == 0 || len(spans) == 0 {
		return attrs
	}

	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := spans[order[a]], spans[order[b]]
		if sa.Priority != sb.Priority {
			return sa.Priority > sb.Priority
		}
		if sa.Monsterbold != sb.Monsterbold {
			return sa.Monsterbold
		}
		return order[a] > order[b]
	})

	fgSet := make([]bool, n)
	bgSet := make([]bool, n)
	ulSet := make([]bool, n)
	for _, idx := range order {
		s := spans[idx]
		lo := clampInt(s.Start, 0, n)
		hi := clampInt(s.End, lo, n)
		for p := lo; p < hi; p++ {
			if s.FG != "" && !fgSet[p] {
				attrs[p].FG = s.FG
				fgSet[p] = true
			}
			if s.BG != "" && !bgSet[p] {
				attrs[p].BG = s.BG
				bgSet[p] = true
			}
			if s.Underline && !ulSet[p] {
				attrs[p].Underline = true
				ulSet[p] = true
			}
		}
	}
	return attrs
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
