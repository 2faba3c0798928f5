// SPDX-License-Identifier: MIT

// Package params implements symbolic sets of parameter valuations for
// boolean networks. Every explicit and anonymous parameter contributes one
// function table cell per input combination; a valuation assigns a boolean
// to each cell and a Set is a bitmap over the whole valuation space.
//
// The representation is exact but exponential in the number of table
// cells, so the encoder enforces a hard capacity limit.
package params

import (
	"math/bits"

	"github.com/sybila/biodivine/internal/sets"
)

var _ sets.Set[Set] = Set{}

// Set is a set of parameter valuations produced by one Encoder. Sets from
// different encoders must not be mixed; the set operations panic when the
// valuation spaces differ.
//
// There is deliberately no complement operation. The unit set of an
// analysis is usually a proper subset of all valuations, so complements
// are expressed as Minus against the appropriate unit set.
type Set struct {
	cells int
	words []uint64
}

func newSet(cells int) Set {
	words := (1 << cells) / 64
	if words == 0 {
		words = 1
	}
	return Set{cells: cells, words: make([]uint64, words)}
}

// valuationMask clears the bits beyond the valuation count in sets whose
// space is smaller than one word.
func (s Set) valuationMask() Set {
	if s.cells < 6 {
		s.words[0] &= (1 << (1 << s.cells)) - 1
	}
	return s
}

func (s Set) check(other Set) {
	if s.cells != other.cells {
		panic("parameter sets come from different encoders")
	}
}

// Union returns the set of valuations present in either set.
func (s Set) Union(other Set) Set {
	s.check(other)
	out := newSet(s.cells)
	for i := range out.words {
		out.words[i] = s.words[i] | other.words[i]
	}
	return out
}

// Intersect returns the set of valuations present in both sets.
func (s Set) Intersect(other Set) Set {
	s.check(other)
	out := newSet(s.cells)
	for i := range out.words {
		out.words[i] = s.words[i] & other.words[i]
	}
	return out
}

// Minus returns the set of valuations present in s but not in other.
func (s Set) Minus(other Set) Set {
	s.check(other)
	out := newSet(s.cells)
	for i := range out.words {
		out.words[i] = s.words[i] &^ other.words[i]
	}
	return out
}

// IsEmpty reports whether the set has no valuations.
func (s Set) IsEmpty() bool {
	for _, w := range s.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// IsSubset reports whether every valuation of s is also in other.
func (s Set) IsSubset(other Set) bool {
	s.check(other)
	for i, w := range s.words {
		if w&^other.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether both sets hold exactly the same valuations.
func (s Set) Equal(other Set) bool {
	s.check(other)
	for i, w := range s.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// Cardinality returns the number of valuations in the set.
func (s Set) Cardinality() int {
	total := 0
	for _, w := range s.words {
		total += bits.OnesCount64(w)
	}
	return total
}
