// Package tag holds the building blocks of tag-annotated text: the reserved
// marker alphabet, tag policies, the equal-length tag encoding, the registry
// that maps encoded display strings back to host entities, and the span
// matchers for marker-bearing buffer text and for canonical text.
//
// # Buffer form
//
// A tag lives in the editable buffer as
//
//	TagStart + PaddedDisplay + TagEnd
//
// where PaddedDisplay is the registry key. Padding uses Filler only, so that
// PaddedDisplay and PaddedCanonical always have the same rune length.
//
// # Matching
//
// Buffer text is split into spans by the TagStart/TagEnd markers alone,
// because display names need not satisfy the identifier pattern. Canonical
// text carries no markers and is matched with prefix + pattern, scanning
// left to right; at one offset the first listed policy wins.
//
// Everything in this package is pure except Registry, which is owned by a
// single session and is not safe for concurrent mutation.
package tag
