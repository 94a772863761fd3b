package tag

import (
	"fmt"
	"sort"
)

// Span is a half-open rune range [Start, End) with Start < End.
type Span struct {
	Start int
	End   int
}

// Len returns the span length in runes.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains reports whether offset lies in [Start, End).
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// StrictlyContains reports whether offset lies strictly between the
// boundaries, i.e. a cursor there would split the span.
func (s Span) StrictlyContains(offset int) bool {
	return offset > s.Start && offset < s.End
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Key returns the text between a buffer span's markers.
func (s Span) Key(text []rune) string {
	if s.Len() < 2 {
		return ""
	}
	return string(text[s.Start+1 : s.End-1])
}

// FindSpans returns the well-formed tag spans of buffer text: a TagStart,
// content free of markers other than Filler, and the next TagEnd. Spans are
// ordered and never overlap.
func FindSpans(text []rune) []Span {
	var spans []Span
	open := -1
	for i, r := range text {
		switch r {
		case TagStart:
			open = i
		case TagEnd:
			if open >= 0 {
				spans = append(spans, Span{Start: open, End: i + 1})
			}
			open = -1
		}
	}
	return spans
}

// SpanAt returns the span strictly containing offset, if any.
func SpanAt(spans []Span, offset int) (Span, bool) {
	for _, s := range spans {
		if s.StrictlyContains(offset) {
			return s, true
		}
		if s.Start >= offset {
			break
		}
	}
	return Span{}, false
}

// DanglingKind tells which half of a marker pair is missing its partner.
type DanglingKind uint8

const (
	DanglingStart DanglingKind = iota // TagStart without a closing TagEnd
	DanglingEnd                       // TagEnd without an opening TagStart
)

// String returns the kind name.
func (k DanglingKind) String() string {
	if k == DanglingStart {
		return "start"
	}
	return "end"
}

// Dangling is a marker that does not belong to any well-formed span.
type Dangling struct {
	Offset int
	Kind   DanglingKind
}

// FindDangling returns every unpaired marker in offset order.
func FindDangling(text []rune) []Dangling {
	var out []Dangling
	open := -1
	for i, r := range text {
		switch r {
		case TagStart:
			if open >= 0 {
				out = append(out, Dangling{Offset: open, Kind: DanglingStart})
			}
			open = i
		case TagEnd:
			if open < 0 {
				out = append(out, Dangling{Offset: i, Kind: DanglingEnd})
			}
			open = -1
		}
	}
	if open >= 0 {
		out = append(out, Dangling{Offset: open, Kind: DanglingStart})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// CanonicalMatch is one tag occurrence in canonical text.
type CanonicalMatch struct {
	Span   Span
	Policy Policy
	Index  int    // position of Policy in its set
	ID     string // canonical id following the prefix
}

// Prefix returns the policy prefix of the match.
func (m CanonicalMatch) Prefix() string {
	return m.Policy.Prefix
}

// FindCanonical scans canonical text left to right. At each offset the
// first listed policy whose prefix + pattern matches wins; scanning resumes
// after the match.
func (s *PolicySet) FindCanonical(text string) []CanonicalMatch {
	return s.FindCanonicalRunes([]rune(text))
}

// FindCanonicalRunes is FindCanonical over a rune slice.
func (s *PolicySet) FindCanonicalRunes(runes []rune) []CanonicalMatch {
	var out []CanonicalMatch
	for i := 0; i < len(runes); {
		if m, ok := s.MatchAt(runes, i); ok {
			out = append(out, m)
			i = m.Span.End
			continue
		}
		i++
	}
	return out
}
