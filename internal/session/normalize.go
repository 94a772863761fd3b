package session

import (
	"github.com/dshills/taggable/internal/engine/buffer"
	"github.com/dshills/taggable/internal/engine/cursor"
	"github.com/dshills/taggable/internal/tag"
)

// dropDangling removes the first unpaired marker. When the text between
// the cursor and the marker is what remains of a registered tag, that text
// goes too: backspacing over a tag's end deletes the whole tag.
func (r *repairer[T]) dropDangling(st state) (state, bool) {
	text := st.snap.Runes()
	dangling := tag.FindDangling(text)
	if len(dangling) == 0 {
		return st, false
	}

	d := dangling[0]
	if st.sel.IsEmpty() {
		c := st.sel.Head
		switch d.Kind {
		case tag.DanglingStart:
			if c > d.Offset && r.isRemnant(text[d.Offset+1:c], r.reg.HasKeyWithPrefix) {
				return st.apply(buffer.NewDelete(d.Offset, c))
			}
		case tag.DanglingEnd:
			if c <= d.Offset && r.isRemnant(text[c:d.Offset], r.reg.HasKeyWithSuffix) {
				return st.apply(buffer.NewDelete(c, d.Offset+1))
			}
		}
	}

	return st.apply(buffer.NewDelete(d.Offset, d.Offset+1))
}

// isRemnant reports whether runes are a whole key or a fragment accepted
// by partial.
func (r *repairer[T]) isRemnant(runes []rune, partial func(string) bool) bool {
	for _, c := range runes {
		if c == tag.TagStart || c == tag.TagEnd {
			return false
		}
	}
	s := string(runes)
	return s == "" || r.reg.Has(s) || partial(s)
}

// snapCursor moves a collapsed cursor out of a tag. A one-step move
// continues to the far boundary in the direction of travel; anything else
// lands on the nearer boundary.
func snapCursor(st state) (state, bool) {
	if !st.sel.IsEmpty() {
		return st, false
	}

	c := st.sel.Head
	sp, ok := tag.SpanAt(tag.FindSpans(st.snap.Runes()), c)
	if !ok {
		return st, false
	}

	var target buffer.Offset
	switch {
	case c-st.prev == 1:
		target = sp.End
	case st.prev-c == 1:
		target = sp.Start
	case c-sp.Start <= sp.End-c:
		target = sp.Start
	default:
		target = sp.End
	}

	st.sel = cursor.NewCursorSelection(target)
	return st, true
}

// widenSelection grows a range selection so that it covers whole tags.
func widenSelection(st state) (state, bool) {
	if st.sel.IsEmpty() {
		return st, false
	}

	spans := tag.FindSpans(st.snap.Runes())
	lo, hi := st.sel.Start(), st.sel.End()
	if sp, ok := tag.SpanAt(spans, lo); ok {
		lo = sp.Start
	}
	if sp, ok := tag.SpanAt(spans, hi); ok {
		hi = sp.End
	}
	if lo == st.sel.Start() && hi == st.sel.End() {
		return st, false
	}

	st.sel = st.sel.WithBounds(lo, hi)
	return st, true
}
