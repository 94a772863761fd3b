// Package cursor provides the selection model used by tagging sessions.
//
// Selections use an anchor/head model where:
//   - Anchor: The position where the selection started (the base)
//   - Head: The current cursor position (the extent, where typing occurs)
//
// When Anchor == Head, the selection represents just a cursor with no
// selected text. The selection can extend forward (head > anchor) or
// backward (head < anchor), preserving the user's selection direction.
//
// Basic usage:
//
//	// Select from 10 to 20
//	sel := cursor.NewSelection(10, 20)
//
//	// Transform after edit
//	edit := buffer.NewInsert(0, "Hello")
//	sel = cursor.TransformSelection(sel, edit)  // Selection(15→25)
//
// Thread Safety:
//
// Selection is an immutable value type and safe for concurrent use.
package cursor
