package buffer

// Offset represents a rune position in the buffer.
// Every position handed to or returned by this package counts runes, so an
// offset is stable regardless of how many bytes a character occupies.
type Offset = int

// Clamp returns offset limited to [0, limit].
func Clamp(offset, limit Offset) Offset {
	if offset < 0 {
		return 0
	}
	if offset > limit {
		return limit
	}
	return offset
}
