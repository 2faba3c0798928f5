// SPDX-License-Identifier: MIT

package sets

import "iter"

// Explicit is a basic hash-map-backed implementation of Set, ElementSet and
// IterableSet. It serves both as the reference implementation of the set
// capabilities and as a general-purpose finite set.
type Explicit[E comparable] struct {
	items map[E]struct{}
}

// interface conformance
var _ IterableSet[Explicit[int], int] = Explicit[int]{}

// NewExplicit creates an empty Explicit set.
func NewExplicit[E comparable]() Explicit[E] {
	return Explicit[E]{items: map[E]struct{}{}}
}

// FromItems creates an Explicit set holding the given items. Duplicates
// collapse silently.
func FromItems[E comparable](items ...E) Explicit[E] {
	s := NewExplicit[E]()
	for _, item := range items {
		s.items[item] = struct{}{}
	}
	return s
}

// Len returns the number of elements in the set.
func (s Explicit[E]) Len() int {
	return len(s.items)
}

// Union computes the set of elements present in either set.
func (s Explicit[E]) Union(other Explicit[E]) Explicit[E] {
	out := NewExplicit[E]()
	for item := range s.items {
		out.items[item] = struct{}{}
	}
	for item := range other.items {
		out.items[item] = struct{}{}
	}
	return out
}

// Intersect computes the set of elements present in both sets.
func (s Explicit[E]) Intersect(other Explicit[E]) Explicit[E] {
	out := NewExplicit[E]()
	for item := range s.items {
		if _, ok := other.items[item]; ok {
			out.items[item] = struct{}{}
		}
	}
	return out
}

// Minus computes the set of elements present in this set but not in other.
func (s Explicit[E]) Minus(other Explicit[E]) Explicit[E] {
	out := NewExplicit[E]()
	for item := range s.items {
		if _, ok := other.items[item]; !ok {
			out.items[item] = struct{}{}
		}
	}
	return out
}

// IsEmpty reports whether the set has no elements.
func (s Explicit[E]) IsEmpty() bool {
	return len(s.items) == 0
}

// IsSubset reports whether every element of this set is in other.
func (s Explicit[E]) IsSubset(other Explicit[E]) bool {
	for item := range s.items {
		if _, ok := other.items[item]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same elements.
func (s Explicit[E]) Equal(other Explicit[E]) bool {
	return len(s.items) == len(other.items) && s.IsSubset(other)
}

// Contains reports whether e is an element of the set.
func (s Explicit[E]) Contains(e E) bool {
	_, ok := s.items[e]
	return ok
}

// Pick returns some element of the set, or false when the set is empty.
func (s Explicit[E]) Pick() (E, bool) {
	for item := range s.items {
		return item, true
	}
	var zero E
	return zero, false
}

// Iter returns an iterator over the elements of the set.
func (s Explicit[E]) Iter() iter.Seq[E] {
	return func(yield func(E) bool) {
		for item := range s.items {
			if !yield(item) {
				return
			}
		}
	}
}

// Items returns the elements as a freshly allocated slice in unspecified
// order.
func (s Explicit[E]) Items() []E {
	out := make([]E, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	return out
}
