package convert

import (
	"context"
	"fmt"

	"github.com/dshills/taggable/internal/tag"
)

// Segment is a run of display text with one style.
type Segment struct {
	Text   string
	Style  tag.Style
	Tagged bool // true when the run is a resolved tag
}

// SegmentFunc renders a resolved entity as a segment.
type SegmentFunc[T any] func(entity T, policy tag.Policy) Segment

// StyleFunc chooses a style for an entity tagged with prefix. Returning the
// empty style falls back to the policy's static style.
type StyleFunc[T any] func(prefix string, entity T) tag.Style

// StyleOf returns the style of a tag, consulting styleFor when set.
func StyleOf[T any](enc tag.Encoded[T], styleFor StyleFunc[T]) tag.Style {
	if styleFor != nil {
		if s := styleFor(enc.Policy.Prefix, enc.Entity); s != "" {
			return s
		}
	}
	return enc.Policy.Style
}

// DefaultSegmenter renders prefix + display text with StyleOf's style.
func DefaultSegmenter[T any](conv tag.Converter[T], styleFor StyleFunc[T]) SegmentFunc[T] {
	return func(entity T, policy tag.Policy) Segment {
		enc := tag.Encode(entity, policy, conv)
		return Segment{Text: enc.Plain(), Style: StyleOf(enc, styleFor), Tagged: true}
	}
}

// SegmentsFromCanonical splits canonical text into styled segments without
// involving any buffer. Unresolved matches pass through as plain text.
// Adjacent plain segments are merged.
func SegmentsFromCanonical[T any](ctx context.Context, text string, set *tag.PolicySet, lookup ReverseLookupFunc[T], toSegment SegmentFunc[T]) ([]Segment, error) {
	runes := []rune(tag.StripMarkers(text))

	var segs segmentList
	last := 0
	for _, m := range set.FindCanonicalRunes(runes) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		segs.plain(string(runes[last:m.Span.Start]))
		last = m.Span.End

		entity, ok, err := lookup(ctx, m.Prefix(), m.ID)
		if err != nil {
			return nil, fmt.Errorf("resolving %s%s: %w", m.Prefix(), m.ID, err)
		}
		if !ok {
			segs.plain(string(runes[m.Span.Start:m.Span.End]))
			continue
		}
		segs.add(toSegment(entity, m.Policy))
	}
	segs.plain(string(runes[last:]))

	return segs, nil
}

// Segments splits live buffer text into styled segments. Recognizable spans
// become tagged segments showing prefix + display; everything else is plain
// text with markers removed.
func Segments[T any](text string, reg *tag.Registry[T], styleFor StyleFunc[T]) []Segment {
	runes := []rune(text)

	var segs segmentList
	last := 0
	for _, sp := range tag.FindSpans(runes) {
		segs.plain(tag.StripMarkers(string(runes[last:sp.Start])))
		last = sp.End

		key := sp.Key(runes)
		enc, ok := tag.Decode(key, reg)
		if !ok {
			segs.plain(tag.StripMarkers(key))
			continue
		}
		segs.add(Segment{Text: enc.Plain(), Style: StyleOf(enc, styleFor), Tagged: true})
	}
	segs.plain(tag.StripMarkers(string(runes[last:])))

	return segs
}

type segmentList []Segment

func (l *segmentList) plain(s string) {
	if s == "" {
		return
	}
	if n := len(*l); n > 0 && !(*l)[n-1].Tagged && (*l)[n-1].Style == "" {
		(*l)[n-1].Text += s
		return
	}
	*l = append(*l, Segment{Text: s})
}

func (l *segmentList) add(s Segment) {
	if !s.Tagged {
		l.plain(s.Text)
		return
	}
	*l = append(*l, s)
}
