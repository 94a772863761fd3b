package cursor

import (
	"github.com/dshills/taggable/internal/engine/buffer"
)

// Edit is an alias for buffer.Edit for convenience.
type Edit = buffer.Edit

// TransformOffset updates an offset after an edit.
// Returns the new offset position.
//
// Transformation rules:
//   - If edit is entirely before offset: adjust offset by the edit's delta
//   - If edit starts at or after offset: offset unchanged
//   - If edit spans offset: move offset to end of new text
func TransformOffset(offset Offset, edit Edit) Offset {
	// Edit is entirely before offset: adjust by delta
	if edit.Range.End <= offset {
		return offset + edit.Delta()
	}

	// Edit starts at or after offset: no change needed
	if edit.Range.Start >= offset {
		return offset
	}

	// Edit spans offset: move to end of new text
	return edit.Range.Start + edit.NewLen()
}

// TransformOffsetSticky is like TransformOffset but with a "sticky" behavior
// that determines how the offset behaves when the edit starts exactly at the offset.
// If sticky is true, the offset "sticks" to its position (stays at start of insert).
// If sticky is false, the offset moves with insertions (moves to end of insert).
func TransformOffsetSticky(offset Offset, edit Edit, sticky bool) Offset {
	// For insertions at exactly the offset position
	if edit.Range.Start == offset && edit.Range.IsEmpty() {
		if sticky {
			return offset
		}
		return offset + edit.NewLen()
	}
	return TransformOffset(offset, edit)
}

// TransformSelection updates a selection after an edit. The head moves
// with insertions at its position. A non-empty selection keeps its anchor
// in place there, so text inserted at the anchor stays outside it; a
// cursor moves as a whole.
func TransformSelection(sel Selection, edit Edit) Selection {
	return TransformSelectionWithBias(sel, edit, !sel.IsEmpty(), false)
}

// TransformSelectionWithBias transforms a selection with specified bias for anchor and head.
// Anchor typically has sticky=true (stays at position for insertions at anchor).
// Head typically has sticky=false (moves with insertions at cursor).
func TransformSelectionWithBias(sel Selection, edit Edit, anchorSticky, headSticky bool) Selection {
	return Selection{
		Anchor: TransformOffsetSticky(sel.Anchor, edit, anchorSticky),
		Head:   TransformOffsetSticky(sel.Head, edit, headSticky),
	}
}
