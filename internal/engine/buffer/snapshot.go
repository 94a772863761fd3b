package buffer

// Snapshot provides a read-only view of a buffer at a specific point in time.
// It is safe for concurrent access and will not change even if the original
// buffer is modified.
type Snapshot struct {
	runes []rune
}

// NewSnapshot creates a snapshot holding s.
func NewSnapshot(s string) *Snapshot {
	return &Snapshot{runes: []rune(s)}
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return string(s.runes)
}

// Runes returns the snapshot content. The returned slice must not be modified.
func (s *Snapshot) Runes() []rune {
	return s.runes
}

// Len returns the total rune length of the snapshot.
func (s *Snapshot) Len() Offset {
	return len(s.runes)
}

// RuneAt returns the rune at the given offset.
// Returns false if offset is out of range.
func (s *Snapshot) RuneAt(offset Offset) (rune, bool) {
	if offset < 0 || offset >= len(s.runes) {
		return 0, false
	}
	return s.runes[offset], true
}

// Apply returns a new snapshot with edit applied. The receiver is unchanged.
func (s *Snapshot) Apply(edit Edit) (*Snapshot, EditResult, error) {
	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
		edit.Range.End > len(s.runes) {
		return s, EditResult{}, ErrRangeInvalid
	}

	newRunes := []rune(edit.NewText)
	out := make([]rune, 0, len(s.runes)-edit.Range.Len()+len(newRunes))
	out = append(out, s.runes[:edit.Range.Start]...)
	out = append(out, newRunes...)
	out = append(out, s.runes[edit.Range.End:]...)

	result := EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: edit.Range.Start + len(newRunes)},
		OldText:  string(s.runes[edit.Range.Start:edit.Range.End]),
		Delta:    len(newRunes) - edit.Range.Len(),
	}
	return &Snapshot{runes: out}, result, nil
}
