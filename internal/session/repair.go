package session

import (
	"github.com/dshills/taggable/internal/engine/buffer"
	"github.com/dshills/taggable/internal/engine/cursor"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

// state is one candidate value of a session: text, selection and the
// cursor position before the edit that produced it. edited covers the text
// the edit wrote, or is nil when the edit typed nothing. loaded marks text
// that replaced the buffer wholesale rather than being typed.
type state struct {
	snap   *buffer.Snapshot
	sel    cursor.Selection
	prev   buffer.Offset
	edited *buffer.Range
	loaded bool
}

// apply applies edit and carries the selection and edited range through it.
func (st state) apply(edit buffer.Edit) (state, bool) {
	next, _, err := st.snap.Apply(edit)
	if err != nil {
		return st, false
	}
	out := state{
		snap: next,
		sel:  cursor.TransformSelection(st.sel, edit),
		prev: st.prev,
	}
	if st.edited != nil {
		r := buffer.NewRange(
			cursor.TransformOffsetSticky(st.edited.Start, edit, true),
			cursor.TransformOffsetSticky(st.edited.End, edit, false),
		)
		out.edited = &r
	}
	return out, true
}

// touches reports whether off lies in or at either end of the edited range.
func (st state) touches(off buffer.Offset) bool {
	return st.edited != nil && st.edited.Start <= off && off <= st.edited.End
}

// editedRange returns the part of after that differs from before, or nil
// when the texts are equal.
func editedRange(before, after []rune) *buffer.Range {
	n := min(len(before), len(after))
	lo := 0
	for lo < n && before[lo] == after[lo] {
		lo++
	}
	if lo == len(before) && lo == len(after) {
		return nil
	}
	tail := 0
	for tail < n-lo && before[len(before)-1-tail] == after[len(after)-1-tail] {
		tail++
	}
	r := buffer.NewRange(lo, len(after)-tail)
	return &r
}

// deleteRange removes [lo, hi) and leaves a cursor at lo.
func (st state) deleteRange(lo, hi buffer.Offset) (state, error) {
	next, ok := st.apply(buffer.NewDelete(lo, hi))
	if !ok {
		return st, buffer.ErrRangeInvalid
	}
	next.sel = cursor.NewCursorSelection(lo)
	return next, nil
}

type repair struct {
	name string
	fn   func(state) (state, bool)
}

// repairer runs the ordered repairs until none applies.
type repairer[T any] struct {
	reg     *tag.Registry[T]
	log     *logging.Logger
	repairs []repair
}

func newRepairer[T any](reg *tag.Registry[T], log *logging.Logger) *repairer[T] {
	r := &repairer[T]{reg: reg, log: log}
	r.repairs = []repair{
		{"dangling-marker", r.dropDangling},
		{"cursor-in-tag", snapCursor},
		{"selection-in-tag", widenSelection},
		{"unrecognized-tag", r.checkSpans},
		{"orphan-filler", dropFiller},
	}
	return r
}

// run applies repairs to st. After any repair the list restarts from the
// top. Text repairs shrink the buffer and selection repairs fire at most
// once per text, so the pass count is bounded by the buffer length.
func (r *repairer[T]) run(st state) state {
	st.sel = st.sel.Clamp(st.snap.Len())

	limit := 2*st.snap.Len() + 4
	for pass := 0; pass < limit; pass++ {
		applied := false
		for _, rp := range r.repairs {
			next, ok := rp.fn(st)
			if !ok {
				continue
			}
			r.log.Debug("repair %s: %s -> %s", rp.name, st.sel, next.sel)
			st = next
			applied = true
			break
		}
		if !applied {
			return st
		}
	}

	r.log.Warn("repairs did not settle after %d passes", limit)
	return st
}
