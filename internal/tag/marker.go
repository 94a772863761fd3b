package tag

import "strings"

// Reserved code points. They are Unicode noncharacters, which are set aside
// for internal use and never appear in interchanged text.
const (
	TagStart rune = '\uFDD0'
	TagEnd   rune = '\uFDD1'
	Filler   rune = '\uFDD2'
)

// IsMarker reports whether r is one of the reserved code points.
func IsMarker(r rune) bool {
	return r == TagStart || r == TagEnd || r == Filler
}

// ContainsMarker reports whether s contains any reserved code point.
func ContainsMarker(s string) bool {
	return strings.ContainsFunc(s, IsMarker)
}

// StripMarkers removes every reserved code point from s.
func StripMarkers(s string) string {
	if !ContainsMarker(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if IsMarker(r) {
			return -1
		}
		return r
	}, s)
}

// StripFiller removes padding code points from s, leaving span markers.
func StripFiller(s string) string {
	if !strings.ContainsRune(s, Filler) {
		return s
	}
	return strings.ReplaceAll(s, string(Filler), "")
}
