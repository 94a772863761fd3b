package tag

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Errors returned when building a PolicySet.
var (
	ErrNoPolicies     = errors.New("no tag policies")
	ErrEmptyPrefix    = errors.New("tag policy prefix is empty")
	ErrEmptyPattern   = errors.New("tag policy pattern is empty")
	ErrMarkerInPolicy = errors.New("tag policy contains a reserved code point")
)

// Style is an opaque style token. The engine only carries it to the host.
type Style string

// Policy describes one kind of tag.
type Policy struct {
	// Prefix is the literal trigger, e.g. "@".
	Prefix string

	// Pattern is a regular expression body matching the canonical id that
	// follows Prefix. It uses .NET/ECMAScript style syntax (lookaround is
	// allowed).
	Pattern string

	// Style is handed to the host for tags of this kind.
	Style Style

	// AllowAdjacent lets a tag be followed directly by a non-whitespace
	// character without being broken back into plain text.
	AllowAdjacent bool
}

// PrefixLen returns the length of the prefix in runes.
func (p Policy) PrefixLen() int {
	return utf8.RuneCountInString(p.Prefix)
}

type compiledPolicy struct {
	Policy
	prefix []rune
	at     *regexp2.Regexp // prefix + pattern anchored at the scan position
	whole  *regexp2.Regexp // pattern matching an entire string
}

// PolicySet is an ordered, immutable list of compiled policies.
// It is safe for concurrent use.
type PolicySet struct {
	policies []compiledPolicy
}

type setConfig struct {
	timeout time.Duration
}

// SetOption configures NewPolicySet.
type SetOption func(*setConfig)

// WithMatchTimeout bounds the time a single pattern evaluation may take.
// A timed-out evaluation counts as "no match".
func WithMatchTimeout(d time.Duration) SetOption {
	return func(c *setConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewPolicySet validates and compiles policies. Order is preserved and
// decides ties between policies matching at the same offset.
func NewPolicySet(policies []Policy, opts ...SetOption) (*PolicySet, error) {
	if len(policies) == 0 {
		return nil, ErrNoPolicies
	}

	cfg := setConfig{timeout: regexp2.DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	set := &PolicySet{policies: make([]compiledPolicy, 0, len(policies))}
	for _, p := range policies {
		if p.Prefix == "" {
			return nil, ErrEmptyPrefix
		}
		if p.Pattern == "" {
			return nil, fmt.Errorf("policy %q: %w", p.Prefix, ErrEmptyPattern)
		}
		if ContainsMarker(p.Prefix) || ContainsMarker(p.Pattern) {
			return nil, fmt.Errorf("policy %q: %w", p.Prefix, ErrMarkerInPolicy)
		}

		at, err := regexp2.Compile(`\G(?:`+regexp2.Escape(p.Prefix)+`)(?:`+p.Pattern+`)`, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("policy %q: compiling pattern: %w", p.Prefix, err)
		}
		whole, err := regexp2.Compile(`\A(?:`+p.Pattern+`)\z`, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("policy %q: compiling pattern: %w", p.Prefix, err)
		}
		at.MatchTimeout = cfg.timeout
		whole.MatchTimeout = cfg.timeout

		set.policies = append(set.policies, compiledPolicy{
			Policy: p,
			prefix: []rune(p.Prefix),
			at:     at,
			whole:  whole,
		})
	}
	return set, nil
}

// MustPolicySet is like NewPolicySet but panics on error.
func MustPolicySet(policies []Policy, opts ...SetOption) *PolicySet {
	set, err := NewPolicySet(policies, opts...)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of policies.
func (s *PolicySet) Len() int {
	return len(s.policies)
}

// Policy returns the i-th policy.
func (s *PolicySet) Policy(i int) Policy {
	return s.policies[i].Policy
}

// Policies returns the policies in list order.
func (s *PolicySet) Policies() []Policy {
	out := make([]Policy, len(s.policies))
	for i, p := range s.policies {
		out[i] = p.Policy
	}
	return out
}

// ByPrefix returns the first listed policy with the given prefix.
func (s *PolicySet) ByPrefix(prefix string) (Policy, bool) {
	for _, p := range s.policies {
		if p.Prefix == prefix {
			return p.Policy, true
		}
	}
	return Policy{}, false
}

// HasPrefixAt reports whether policy i's prefix occurs in text at offset.
func (s *PolicySet) HasPrefixAt(i int, text []rune, offset int) bool {
	prefix := s.policies[i].prefix
	if offset < 0 || offset+len(prefix) > len(text) {
		return false
	}
	for j, r := range prefix {
		if text[offset+j] != r {
			return false
		}
	}
	return true
}

// MatchesPartial reports whether partial, the text typed after policy i's
// prefix, is empty or entirely matched by the policy pattern.
func (s *PolicySet) MatchesPartial(i int, partial string) bool {
	if partial == "" {
		return true
	}
	ok, err := s.policies[i].whole.MatchString(partial)
	return err == nil && ok
}

// MatchAt tries every policy at offset in list order and returns the first
// match. The match covers the prefix and the greedy pattern run, and must
// consume at least one rune after the prefix.
func (s *PolicySet) MatchAt(text []rune, offset int) (CanonicalMatch, bool) {
	for i, p := range s.policies {
		if !s.HasPrefixAt(i, text, offset) {
			continue
		}
		m, err := p.at.FindRunesMatchStartingAt(text, offset)
		if err != nil || m == nil || m.Index != offset || m.Length <= len(p.prefix) {
			continue
		}
		return CanonicalMatch{
			Span:   Span{Start: offset, End: offset + m.Length},
			Policy: p.Policy,
			Index:  i,
			ID:     string(text[offset+len(p.prefix) : offset+m.Length]),
		}, true
	}
	return CanonicalMatch{}, false
}
