// SPDX-License-Identifier: MIT

// Package sets defines capabilities for collections of values that are
// queried for membership rather than enumerated.
//
// A type implementing Set holds a collection of values, but the collection
// itself does not have to be explicit: it can be infinite or even
// uncountable, as long as it supports the basic set algebra and emptiness
// and inclusion tests. ElementSet adds membership tests and picking a
// representative element, and IterableSet adds full enumeration for sets
// that are countable.
package sets

import "iter"

// Set is a collection of elements. The elements do not have to be
// instantiable and the set can be infinite or even uncountable. There is no
// complement operation because the unit set is context dependent; use Minus
// with an appropriate unit set instead.
//
// The type parameter S is the implementing type itself, so that the
// operations stay closed over one representation.
type Set[S any] interface {
	// Union computes the set of elements present in either set.
	Union(other S) S
	// Intersect computes the set of elements present in both sets.
	Intersect(other S) S
	// Minus computes the set of elements present in this set but not in other.
	Minus(other S) S
	// IsEmpty reports whether the set has no elements.
	IsEmpty() bool
	// IsSubset reports whether every element of this set is in other.
	IsSubset(other S) bool
	// Equal reports whether both sets hold exactly the same elements.
	Equal(other S) bool
}

// ElementSet is a Set containing instantiable elements. It can still be
// infinite or uncountable, so it does not allow modification through
// individual elements; only testing their presence and picking some
// representative element of the set.
type ElementSet[S any, E any] interface {
	Set[S]

	// Contains reports whether e is an element of the set.
	Contains(e E) bool
	// Pick returns some element of the set, or reports false when the set
	// is empty. The choice does not have to be deterministic. Elements are
	// typically constructed on demand, so Pick returns an owned value.
	Pick() (E, bool)
}

// IterableSet is an ElementSet whose elements are countable and can be
// enumerated.
type IterableSet[S any, E any] interface {
	ElementSet[S, E]

	// Iter returns an iterator over owned elements of the set. The
	// iteration order is unspecified.
	Iter() iter.Seq[E]
}
