package session

import (
	"unicode"

	"github.com/dshills/taggable/internal/engine/buffer"
	"github.com/dshills/taggable/internal/tag"
)

// checkSpans fixes the first tag that no longer stands on its own:
//
//   - a registered tag directly followed by text the current edit wrote is
//     broken back into plain prefix + display, since the user is typing
//     past it
//   - a truncated key (a proper prefix or suffix of a registered key) is
//     deleted outright
//   - any other unregistered content is unwrapped to plain text
func (r *repairer[T]) checkSpans(st state) (state, bool) {
	text := st.snap.Runes()
	for _, sp := range tag.FindSpans(text) {
		rng := buffer.NewRange(sp.Start, sp.End)
		key := sp.Key(text)

		if enc, ok := r.reg.Lookup(key); ok {
			if enc.Policy.AllowAdjacent || !st.touches(sp.End) || !joinsNext(text, sp.End) {
				continue
			}
			return st.apply(buffer.NewEdit(rng, enc.Plain()))
		}

		if r.reg.HasKeyWithPrefix(key) || r.reg.HasKeyWithSuffix(key) {
			return st.apply(buffer.NewDelete(sp.Start, sp.End))
		}

		return st.apply(buffer.NewEdit(rng, tag.StripMarkers(key)))
	}
	return st, false
}

// joinsNext reports whether the rune at off continues a word, which would
// glue it onto the tag that ends there.
func joinsNext(text []rune, off int) bool {
	if off >= len(text) {
		return false
	}
	r := text[off]
	return !unicode.IsSpace(r) && r != tag.TagStart
}

// dropFiller removes the first run of filler outside every tag.
func dropFiller(st state) (state, bool) {
	text := st.snap.Runes()
	spans := tag.FindSpans(text)

	si := 0
	for i := 0; i < len(text); i++ {
		for si < len(spans) && spans[si].End <= i {
			si++
		}
		if si < len(spans) && spans[si].Contains(i) {
			i = spans[si].End - 1
			continue
		}
		if text[i] != tag.Filler {
			continue
		}

		j := i
		for j < len(text) && text[j] == tag.Filler {
			j++
		}
		return st.apply(buffer.NewDelete(i, j))
	}
	return st, false
}
