// Package session implements the editable side of tagged text: one buffer
// with its selection and tag registry, kept consistent after every edit.
//
// Every mutation (SetValue, Insert, Backspace, InsertTaggable, ...) runs a
// repair pipeline before the new value is published:
//
//   - dangling markers left by partial deletes are removed, together with
//     the tag remnant next to the cursor
//   - a cursor never rests inside a tag; arrow movement jumps over it
//   - selection endpoints are widened to whole tags
//   - tags that no longer decode are deleted or broken back into text
//
// After repairs, the text behind the cursor is checked for an in-progress
// query such as "@ad". Complete runs the host's search and pick callbacks
// for that query without holding the session lock and commits the pick only
// if the same query is still active.
//
// Basic usage:
//
//	s := session.New(policies, session.Host[User]{
//		Converter: conv,
//		Search:    searchUsers,
//		Pick:      session.PickFirst[User],
//	})
//	s.Insert("Hi @ad")
//	ok, err := s.Complete(ctx)
//	stored := s.CanonicalText() // "Hi @ada "
package session
