// Package convert moves text between the three representations of tagged
// content: the marker-bearing buffer form, the canonical form meant for
// storage, and a neutral sequence of styled segments for rendering.
//
// ToCanonical is pure. FromCanonical and SegmentsFromCanonical suspend on
// the host's reverse lookup; they hold no state and may run concurrently for
// independent texts.
package convert
