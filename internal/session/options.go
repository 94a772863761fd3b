package session

import (
	"context"

	"github.com/dshills/taggable/internal/convert"
	"github.com/dshills/taggable/internal/logging"
	"github.com/dshills/taggable/internal/tag"
)

// Host holds the callbacks a session needs from its embedding application.
type Host[T any] struct {
	// Converter renders entities. Required.
	Converter tag.Converter[T]

	// Search returns candidates for a query. Optional; Complete fails with
	// ErrNoSearch without it.
	Search SearchFunc[T]

	// Pick chooses one candidate, typically by asking the user.
	Pick PickFunc[T]

	// StyleFor overrides the policy style per entity.
	StyleFor convert.StyleFunc[T]
}

// Option configures a Session during creation.
type Option func(*settings)

type settings struct {
	logger   *logging.Logger
	auto     bool
	onChange func(Value)
	onError  func(error)
	ctx      context.Context
}

func defaultSettings() settings {
	return settings{
		logger: logging.Default(),
		ctx:    context.Background(),
	}
}

// WithLogger sets the logger. Sessions log under the "session" component.
func WithLogger(l *logging.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAutoComplete starts a lookup in the background whenever an edit
// produces a new query.
func WithAutoComplete(enabled bool) Option {
	return func(s *settings) {
		s.auto = enabled
	}
}

// WithChangeHandler registers fn to receive every published value. fn runs
// outside the session lock and may be called from lookup goroutines.
func WithChangeHandler(fn func(Value)) Option {
	return func(s *settings) {
		s.onChange = fn
	}
}

// WithErrorHandler registers fn to receive errors from background lookups.
func WithErrorHandler(fn func(error)) Option {
	return func(s *settings) {
		s.onError = fn
	}
}

// WithContext sets the context background lookups run under.
func WithContext(ctx context.Context) Option {
	return func(s *settings) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}
