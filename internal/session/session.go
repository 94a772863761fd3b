package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/engine/buffer"
	"github.com/dshills/taggable/internal/engine/cursor"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

// Value is the text and selection a session publishes after an edit.
type Value struct {
	Text      string
	Selection cursor.Selection
}

// Session is one editable tagged text. All methods are safe for concurrent
// use; mutations are serialized.
type Session[T any] struct {
	id   string
	set  *tag.PolicySet
	host Host[T]
	opts settings
	log  *logging.Logger

	mu      sync.Mutex
	buf     *buffer.Buffer
	sel     cursor.Selection
	reg     *tag.Registry[T]
	fix     *repairer[T]
	pending Query // last query handed to a background lookup
	closed  bool

	inflight sync.WaitGroup
}

// New creates an empty session over policies.
func New[T any](policies *tag.PolicySet, host Host[T], opts ...Option) *Session[T] {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	id := uuid.NewString()
	log := cfg.logger.WithComponent("session").WithField("session", id[:8])
	reg := tag.NewRegistry[T]()

	return &Session[T]{
		id:   id,
		set:  policies,
		host: host,
		opts: cfg,
		log:  log,
		buf:  buffer.NewBuffer(),
		reg:  reg,
		fix:  newRepairer(reg, log),
	}
}

// ID returns the session's unique id.
func (s *Session[T]) ID() string {
	return s.id
}

// Policies returns the session's policy set.
func (s *Session[T]) Policies() *tag.PolicySet {
	return s.set
}

// Value returns the current text and selection.
func (s *Session[T]) Value() Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valueLocked()
}

// Text returns the buffer text, markers included.
func (s *Session[T]) Text() string {
	return s.buf.Text()
}

// Selection returns the current selection.
func (s *Session[T]) Selection() cursor.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Spans returns the tag spans of the current text.
func (s *Session[T]) Spans() []tag.Span {
	return tag.FindSpans(s.buf.Snapshot().Runes())
}

// Registry returns a copy of the tag registry.
func (s *Session[T]) Registry() *tag.Registry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := tag.NewRegistry[T]()
	for _, enc := range s.reg.Entries() {
		out.Put(enc)
	}
	return out
}

// CanonicalText returns the text in canonical form for storage.
func (s *Session[T]) CanonicalText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return convert.ToCanonical(s.buf.Text(), s.reg)
}

// DisplayText returns the text as the user sees it.
func (s *Session[T]) DisplayText() string {
	return tag.StripMarkers(s.buf.Text())
}

// Segments returns the current text as styled segments.
func (s *Session[T]) Segments() []convert.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return convert.Segments(s.buf.Text(), s.reg, s.host.StyleFor)
}

// ActiveQuery returns the query ending at the cursor, if any.
func (s *Session[T]) ActiveQuery() (Query, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked()
}

// SetValue replaces text and selection, as a host does after each
// keystroke, and returns the repaired value.
func (s *Session[T]) SetValue(text string, sel cursor.Selection) Value {
	v, _ := s.mutate(true, func(st state) (state, error) {
		snap := buffer.NewSnapshot(text)
		return state{snap: snap, sel: sel.Clamp(snap.Len()), prev: st.prev}, nil
	})
	return v
}

// Insert types text over the selection. Markers in text are dropped.
func (s *Session[T]) Insert(text string) Value {
	text = tag.StripMarkers(text)
	v, _ := s.mutate(true, func(st state) (state, error) {
		lo, hi := st.sel.Start(), st.sel.End()
		next, ok := st.apply(buffer.NewEdit(buffer.NewRange(lo, hi), text))
		if !ok {
			return st, buffer.ErrRangeInvalid
		}
		next.sel = cursor.NewCursorSelection(lo + utf8.RuneCountInString(text))
		return next, nil
	})
	return v
}

// Backspace deletes the selection, or the rune before the cursor.
func (s *Session[T]) Backspace() Value {
	v, _ := s.mutate(true, func(st state) (state, error) {
		if !st.sel.IsEmpty() {
			return st.deleteRange(st.sel.Start(), st.sel.End())
		}
		c := st.sel.Head
		if c == 0 {
			return st, nil
		}
		return st.deleteRange(c-1, c)
	})
	return v
}

// DeleteForward deletes the selection, or the rune after the cursor.
func (s *Session[T]) DeleteForward() Value {
	v, _ := s.mutate(true, func(st state) (state, error) {
		if !st.sel.IsEmpty() {
			return st.deleteRange(st.sel.Start(), st.sel.End())
		}
		c := st.sel.Head
		if c >= st.snap.Len() {
			return st, nil
		}
		return st.deleteRange(c, c+1)
	})
	return v
}

// MoveCursor collapses the selection at offset.
func (s *Session[T]) MoveCursor(offset buffer.Offset) Value {
	return s.Select(offset, offset)
}

// Select sets the selection.
func (s *Session[T]) Select(anchor, head buffer.Offset) Value {
	v, _ := s.mutate(true, func(st state) (state, error) {
		st.sel = cursor.NewSelection(anchor, head).Clamp(st.snap.Len())
		return st, nil
	})
	return v
}

// Clear empties the text, the selection and the registry.
func (s *Session[T]) Clear() Value {
	v, _ := s.mutate(false, func(st state) (state, error) {
		s.reg.Clear()
		return state{snap: buffer.NewSnapshot(""), sel: cursor.NewCursorSelection(0), loaded: true}, nil
	})
	return v
}

// InsertTaggable replaces the n runes before the cursor with a tag for
// entity and moves the cursor past one whitespace after it. A space is
// inserted unless whitespace already follows.
func (s *Session[T]) InsertTaggable(prefix string, entity T, n int) error {
	policy, ok := s.set.ByPrefix(prefix)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	_, err := s.mutate(true, func(st state) (state, error) {
		return s.insertTag(st, policy, entity, n)
	})
	return err
}

// InitializeFromCanonical replaces the session content with text in
// canonical form, resolving tags through lookup. On error the session is
// left unchanged. No background lookup is started for the loaded text.
func (s *Session[T]) InitializeFromCanonical(ctx context.Context, text string, lookup convert.ReverseLookupFunc[T]) error {
	dec, err := convert.FromCanonical(ctx, text, s.set, s.host.Converter, lookup)
	if err != nil {
		return fmt.Errorf("initialize session: %w", err)
	}

	_, err = s.mutate(false, func(st state) (state, error) {
		s.reg.Clear()
		for _, enc := range dec.Tags {
			s.reg.Put(enc)
		}
		snap := buffer.NewSnapshot(dec.Text)
		end := snap.Len()
		return state{snap: snap, sel: cursor.NewCursorSelection(end), prev: end, loaded: true}, nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("initialized with %d tags", len(dec.Tags))
	return nil
}

// Close marks the session closed. Later mutations are ignored and results
// of lookups still in flight are dropped. Close does not wait for them.
func (s *Session[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debug("closed")
	return nil
}

// insertTag registers the tag and builds the edited state. It must run
// under s.mu.
func (s *Session[T]) insertTag(st state, policy tag.Policy, entity T, n int) (state, error) {
	if !st.sel.IsEmpty() {
		var err error
		if st, err = st.deleteRange(st.sel.Start(), st.sel.End()); err != nil {
			return st, err
		}
	}

	c := st.sel.Head
	if n < 0 || n > c {
		return st, fmt.Errorf("%w: %d before offset %d", ErrInvalidReplace, n, c)
	}

	enc := tag.Encode(entity, policy, s.host.Converter)
	text := enc.BufferForm()
	if r, ok := st.snap.RuneAt(c); !ok || !unicode.IsSpace(r) {
		text += " "
	}

	next, ok := st.apply(buffer.NewEdit(buffer.NewRange(c-n, c), text))
	if !ok {
		return st, buffer.ErrRangeInvalid
	}
	next.sel = cursor.NewCursorSelection(c - n + enc.Len() + 1)
	s.reg.Put(enc)

	s.log.WithField("tag", enc.CanonicalForm()).Debug("inserted tag at %d", c-n)
	return next, nil
}

// mutate runs fn on the current state under the lock, repairs and stores
// the result, then publishes it. With trigger set, a new query starts a
// background lookup when auto-complete is on.
func (s *Session[T]) mutate(trigger bool, fn func(state) (state, error)) (Value, error) {
	s.mu.Lock()
	if s.closed {
		v := s.valueLocked()
		s.mu.Unlock()
		return v, ErrClosed
	}

	base := s.buf.Snapshot()
	next, err := fn(state{snap: base, sel: s.sel, prev: s.sel.Head})
	if err != nil {
		v := s.valueLocked()
		s.mu.Unlock()
		return v, err
	}
	if !next.loaded {
		next.edited = editedRange(base.Runes(), next.snap.Runes())
	}

	next = s.fix.run(next)
	s.buf.Restore(next.snap)
	s.sel = next.sel
	v := s.valueLocked()

	q, start := s.nextLookupLocked(trigger)
	s.mu.Unlock()

	if s.opts.onChange != nil {
		s.opts.onChange(v)
	}
	if start {
		s.startLookup(q)
	}
	return v, nil
}

// nextLookupLocked reports whether the current query needs a background
// lookup. Each distinct query is looked up once.
func (s *Session[T]) nextLookupLocked(trigger bool) (Query, bool) {
	q, ok := s.queryLocked()
	if !ok {
		s.pending = Query{}
		return Query{}, false
	}
	if !trigger {
		s.pending = q
		return q, false
	}
	if !s.opts.auto || s.host.Search == nil || s.host.Pick == nil || q == s.pending {
		return q, false
	}
	s.pending = q
	return q, true
}

func (s *Session[T]) queryLocked() (Query, bool) {
	return DetectQuery(s.buf.Snapshot().Runes(), s.sel, s.set)
}

func (s *Session[T]) valueLocked() Value {
	return Value{Text: s.buf.Text(), Selection: s.sel}
}

func (s *Session[T]) reportError(err error) {
	if errors.Is(err, context.Canceled) {
		s.log.Debug("lookup cancelled")
		return
	}
	s.log.Warn("lookup failed: %v", err)
	if s.opts.onError != nil {
		s.opts.onError(err)
	}
}
