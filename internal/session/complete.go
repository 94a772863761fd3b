package session

import (
	"context"
	"errors"
	"fmt"
)

// SearchFunc returns the candidates for query typed after prefix.
type SearchFunc[T any] func(ctx context.Context, prefix, query string) ([]T, error)

// PickFunc chooses one of the candidates. ok is false when the user
// declines. A picker may return before the candidates resolve.
type PickFunc[T any] func(ctx context.Context, candidates *Candidates[T]) (entity T, ok bool, err error)

// Candidates is the pending result of a search.
type Candidates[T any] struct {
	query Query
	done  chan struct{}
	items []T
	err   error
}

func newCandidates[T any](q Query) *Candidates[T] {
	return &Candidates[T]{query: q, done: make(chan struct{})}
}

// ResolvedCandidates returns candidates that are already complete.
func ResolvedCandidates[T any](q Query, items []T, err error) *Candidates[T] {
	c := newCandidates[T](q)
	c.resolve(items, err)
	return c
}

func (c *Candidates[T]) resolve(items []T, err error) {
	c.items, c.err = items, err
	close(c.done)
}

// Query returns the query being searched.
func (c *Candidates[T]) Query() Query {
	return c.query
}

// Done is closed once the search has finished.
func (c *Candidates[T]) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the search finishes or ctx is done.
func (c *Candidates[T]) Wait(ctx context.Context) ([]T, error) {
	select {
	case <-c.done:
		return c.items, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the search error, or nil while the search is running.
func (c *Candidates[T]) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// PickFirst is a PickFunc that takes the first candidate.
func PickFirst[T any](ctx context.Context, candidates *Candidates[T]) (T, bool, error) {
	var zero T
	items, err := candidates.Wait(ctx)
	if err != nil || len(items) == 0 {
		return zero, false, err
	}
	return items[0], true, nil
}

// Complete looks up the active query and inserts the picked entity. The
// session lock is not held while the host searches and picks, so edits may
// continue meanwhile; the pick is committed only if the same query is still
// active afterward. It reports whether a tag was inserted.
func (s *Session[T]) Complete(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	q, ok := s.queryLocked()
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	return s.complete(ctx, q)
}

func (s *Session[T]) complete(ctx context.Context, q Query) (bool, error) {
	if s.host.Search == nil || s.host.Pick == nil {
		return false, ErrNoSearch
	}
	log := s.log.WithField("query", q.Text())

	cands := newCandidates[T](q)
	go func() {
		items, err := s.host.Search(ctx, q.Prefix, q.Partial)
		cands.resolve(items, err)
	}()

	entity, chosen, err := s.host.Pick(ctx, cands)
	if err != nil {
		return false, fmt.Errorf("pick %s: %w", q.Text(), err)
	}
	if err := cands.Err(); err != nil {
		return false, fmt.Errorf("search %s: %w", q.Text(), err)
	}
	if !chosen {
		log.Debug("lookup declined")
		return false, nil
	}

	policy := s.set.Policy(q.policy)
	_, err = s.mutate(true, func(st state) (state, error) {
		cur, ok := DetectQuery(st.snap.Runes(), st.sel, s.set)
		if !ok || cur != q {
			return st, errStale
		}
		return s.insertTag(st, policy, entity, q.Len())
	})
	switch {
	case errors.Is(err, errStale), errors.Is(err, ErrClosed):
		log.Debug("dropping result: %v", err)
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// startLookup runs complete for q in the background.
func (s *Session[T]) startLookup(q Query) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if _, err := s.complete(s.opts.ctx, q); err != nil {
			s.reportError(err)
		}
	}()
}

// Wait blocks until all background lookups have finished. It must not be
// called concurrently with mutations that may start new lookups.
func (s *Session[T]) Wait() {
	s.inflight.Wait()
}
