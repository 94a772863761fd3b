// Package buffer provides a thread-safe text buffer addressed by rune
// offsets. It serves as the storage layer beneath a tagging session.
//
// The buffer package provides:
//
//   - Copy-on-write storage: every edit produces a new immutable Snapshot
//   - Edit, Range and EditResult values shared with the cursor package
//   - A Buffer holding the current snapshot behind a sync.RWMutex
//
// Basic usage:
//
//	buf := buffer.NewBuffer()
//
//	// Derive a new state without touching the buffer
//	snap := buf.Snapshot()
//	next, _, err := snap.Apply(buffer.NewInsert(0, "Hello, World!"))
//	if err != nil {
//		return err
//	}
//	buf.Restore(next)
//
// Offsets:
//
// All positions are rune offsets. Tag markers are single runes, so a rune
// offset maps one-to-one onto what a text field reports as a character
// position for text in the Basic Multilingual Plane.
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Snapshots are immutable and may be
// shared freely between goroutines.
package buffer
