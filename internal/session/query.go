package session

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/taggable/internal/engine/cursor"
	"github.com/dshills/taggable/internal/tag"
)

// Query is an in-progress tag: a policy prefix followed by the partial text
// typed so far, ending at the cursor.
type Query struct {
	Prefix  string
	Partial string
	Start   int // offset of the prefix
	Cursor  int // offset just past the partial text

	policy int
}

// Len returns the number of runes an inserted tag replaces.
func (q Query) Len() int {
	return q.Cursor - q.Start
}

// Text returns prefix + partial.
func (q Query) Text() string {
	return q.Prefix + q.Partial
}

// String returns a human-readable representation of the query.
func (q Query) String() string {
	return fmt.Sprintf("Query(%q@%d)", q.Text(), q.Start)
}

// openers may directly precede a prefix, e.g. "(@ada".
const openers = "([{\"'"

// DetectQuery finds the query ending at a collapsed cursor. Scanning runs
// backward from the cursor and stops at the first marker, so text inside
// or before a tag never forms a query. The nearest prefix wins; at one
// offset the first listed policy wins. A prefix occurrence is skipped
// unless:
//
//   - it sits at the start of the text, after whitespace or after an
//     opening bracket, so the "@" in "bob@ad" starts no query
//   - the text after it is empty or fully matched by its policy pattern
func DetectQuery(text []rune, sel cursor.Selection, set *tag.PolicySet) (Query, bool) {
	if !sel.IsEmpty() || set == nil {
		return Query{}, false
	}
	c := sel.Head
	if c < 0 || c > len(text) {
		return Query{}, false
	}

	for p := c - 1; p >= 0; p-- {
		if tag.IsMarker(text[p]) {
			return Query{}, false
		}
		if !startsToken(text, p) {
			continue
		}
		for i := 0; i < set.Len(); i++ {
			pol := set.Policy(i)
			if p+pol.PrefixLen() > c || !set.HasPrefixAt(i, text, p) {
				continue
			}
			partial := string(text[p+pol.PrefixLen() : c])
			if !set.MatchesPartial(i, partial) {
				continue
			}
			return Query{
				Prefix:  pol.Prefix,
				Partial: partial,
				Start:   p,
				Cursor:  c,
				policy:  i,
			}, true
		}
	}
	return Query{}, false
}

func startsToken(text []rune, p int) bool {
	if p == 0 {
		return true
	}
	r := text[p-1]
	return unicode.IsSpace(r) || strings.ContainsRune(openers, r)
}
