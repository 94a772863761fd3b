package tag

import (
	"strings"
	"unicode/utf8"
)

// Converter turns a host entity into its display and canonical strings.
// Both functions must be deterministic and return non-empty strings.
type Converter[T any] struct {
	Display   func(T) string
	Canonical func(T) string
}

// Encoded is a tag: an entity rendered under one policy.
type Encoded[T any] struct {
	Entity    T
	Policy    Policy
	Display   string
	Canonical string

	// PaddedDisplay and PaddedCanonical always have equal rune length.
	PaddedDisplay   string
	PaddedCanonical string
}

// Encode renders entity under policy. It never fails.
func Encode[T any](entity T, policy Policy, conv Converter[T]) Encoded[T] {
	display := StripMarkers(conv.Display(entity))
	canonical := StripMarkers(conv.Canonical(entity))

	dl := utf8.RuneCountInString(display)
	cl := utf8.RuneCountInString(canonical)

	return Encoded[T]{
		Entity:          entity,
		Policy:          policy,
		Display:         display,
		Canonical:       canonical,
		PaddedDisplay:   padding(cl-dl) + policy.Prefix + display,
		PaddedCanonical: policy.Prefix + padding(dl-cl) + canonical,
	}
}

func padding(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(string(Filler), n)
}

// Key returns the registry key of the tag.
func (e Encoded[T]) Key() string {
	return e.PaddedDisplay
}

// BufferForm returns the marker-delimited text stored in a buffer.
func (e Encoded[T]) BufferForm() string {
	return string(TagStart) + e.PaddedDisplay + string(TagEnd)
}

// Plain returns prefix + display, the text left behind when a tag is
// broken back into ordinary text.
func (e Encoded[T]) Plain() string {
	return e.Policy.Prefix + e.Display
}

// CanonicalForm returns prefix + canonical id.
func (e Encoded[T]) CanonicalForm() string {
	return e.Policy.Prefix + e.Canonical
}

// Len returns the rune length of BufferForm.
func (e Encoded[T]) Len() int {
	return utf8.RuneCountInString(e.PaddedDisplay) + 2
}

// Decode looks key up in reg. A missing key means the text is not a
// recognizable tag; it is not an error.
func Decode[T any](key string, reg *Registry[T]) (Encoded[T], bool) {
	if reg == nil {
		return Encoded[T]{}, false
	}
	return reg.Lookup(key)
}
