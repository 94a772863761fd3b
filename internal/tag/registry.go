package tag

import "strings"

// Registry maps padded display strings to the tags they encode.
// Keys keep their first insertion order; storing an existing key replaces
// its value.
type Registry[T any] struct {
	order   []string
	entries map[string]Encoded[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]Encoded[T])}
}

// Put registers enc under its key.
func (r *Registry[T]) Put(enc Encoded[T]) {
	key := enc.Key()
	if _, ok := r.entries[key]; !ok {
		r.order = append(r.order, key)
	}
	r.entries[key] = enc
}

// Lookup returns the tag registered under key.
func (r *Registry[T]) Lookup(key string) (Encoded[T], bool) {
	enc, ok := r.entries[key]
	return enc, ok
}

// Has reports whether key is registered.
func (r *Registry[T]) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Len returns the number of registered keys.
func (r *Registry[T]) Len() int {
	return len(r.order)
}

// Keys returns the keys in insertion order.
func (r *Registry[T]) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns the registered tags in insertion order.
func (r *Registry[T]) Entries() []Encoded[T] {
	out := make([]Encoded[T], 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.entries[k])
	}
	return out
}

// Clear removes every entry.
func (r *Registry[T]) Clear() {
	r.order = nil
	r.entries = make(map[string]Encoded[T])
}

// HasKeyWithPrefix reports whether some key starts with fragment and is
// longer than it: fragment is a key with its tail cut off.
func (r *Registry[T]) HasKeyWithPrefix(fragment string) bool {
	for _, k := range r.order {
		if len(k) > len(fragment) && strings.HasPrefix(k, fragment) {
			return true
		}
	}
	return false
}

// HasKeyWithSuffix reports whether some key ends with fragment and is
// longer than it: fragment is a key with its head cut off.
func (r *Registry[T]) HasKeyWithSuffix(fragment string) bool {
	for _, k := range r.order {
		if len(k) > len(fragment) && strings.HasSuffix(k, fragment) {
			return true
		}
	}
	return false
}
