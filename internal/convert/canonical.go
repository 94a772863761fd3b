package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/taggable/internal/tag"
)

// ReverseLookupFunc resolves a canonical id found after prefix back to an
// entity. ok is false when the id is unknown; err reports a failed lookup.
type ReverseLookupFunc[T any] func(ctx context.Context, prefix, canonicalID string) (entity T, ok bool, err error)

// ToCanonical converts buffer text to canonical text. Every recognizable
// span becomes prefix + canonical id, unrecognizable spans keep their text,
// and all markers and filler are dropped.
func ToCanonical[T any](text string, reg *tag.Registry[T]) string {
	runes := []rune(text)
	spans := tag.FindSpans(runes)
	if len(spans) == 0 {
		return tag.StripMarkers(text)
	}

	var sb strings.Builder
	last := 0
	for _, sp := range spans {
		sb.WriteString(string(runes[last:sp.Start]))
		key := sp.Key(runes)
		if enc, ok := tag.Decode(key, reg); ok {
			sb.WriteString(enc.CanonicalForm())
		} else {
			sb.WriteString(key)
		}
		last = sp.End
	}
	sb.WriteString(string(runes[last:]))

	return tag.StripMarkers(sb.String())
}

// Decoded is buffer text rebuilt from canonical text, together with the
// tags it contains.
type Decoded[T any] struct {
	Text string
	Tags []tag.Encoded[T]
}

// FromCanonical rebuilds buffer text from canonical text. Each policy match
// is looked up; resolved matches are encoded with markers, unresolved ones
// stay literal. Text between matches is copied verbatim, so token order and
// spacing are preserved. A failed lookup aborts the conversion.
func FromCanonical[T any](ctx context.Context, text string, set *tag.PolicySet, conv tag.Converter[T], lookup ReverseLookupFunc[T]) (Decoded[T], error) {
	runes := []rune(tag.StripMarkers(text))
	matches := set.FindCanonicalRunes(runes)

	var out Decoded[T]
	var sb strings.Builder
	last := 0
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return Decoded[T]{}, err
		}
		sb.WriteString(string(runes[last:m.Span.Start]))
		last = m.Span.End

		entity, ok, err := lookup(ctx, m.Prefix(), m.ID)
		if err != nil {
			return Decoded[T]{}, fmt.Errorf("resolving %s%s: %w", m.Prefix(), m.ID, err)
		}
		if !ok {
			sb.WriteString(string(runes[m.Span.Start:m.Span.End]))
			continue
		}

		enc := tag.Encode(entity, m.Policy, conv)
		sb.WriteString(enc.BufferForm())
		out.Tags = append(out.Tags, enc)
	}
	sb.WriteString(string(runes[last:]))

	out.Text = sb.String()
	return out, nil
}
