package buffer

import (
	"errors"
	"sync"
)

// ErrRangeInvalid is returned for an edit whose range does not fit the text.
var ErrRangeInvalid = errors.New("invalid range")

// Buffer holds the editable text as a copy-on-write rune slice.
// All methods are thread-safe.
type Buffer struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewBuffer creates a new empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{snap: NewSnapshot("")}
}

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snap.Text()
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	// Rune slices are never mutated in place, safe to share
	return b.snap
}

// Restore makes snap the current buffer state.
func (b *Buffer) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = snap
}
