// SPDX-License-Identifier: MIT

// Package bitvec provides fixed-width bit vectors used to represent states
// of boolean models. Two implementations are provided: Packed, a single
// machine word holding up to 58 bits, and Bits, a slice-backed vector
// without a length cap.
package bitvec

import "strings"

// BitVector is a fixed-length vector of boolean values.
type BitVector interface {
	// Len returns the number of bits in the vector.
	Len() int
	// Get returns the bit at the given index. Panics when out of range.
	Get(index int) bool
	// Set writes the bit at the given index. Panics when out of range.
	Set(index int, value bool)
	// Flip inverts the bit at the given index. Panics when out of range.
	Flip(index int)
}

// Values returns all bits of the vector as a bool slice.
func Values(bv BitVector) []bool {
	out := make([]bool, bv.Len())
	for i := range out {
		out[i] = bv.Get(i)
	}
	return out
}

// Ones returns the indices of all set bits in increasing order.
func Ones(bv BitVector) []int {
	var out []int
	for i := 0; i < bv.Len(); i++ {
		if bv.Get(i) {
			out = append(out, i)
		}
	}
	return out
}

// Zeros returns the indices of all unset bits in increasing order.
func Zeros(bv BitVector) []int {
	var out []int
	for i := 0; i < bv.Len(); i++ {
		if !bv.Get(i) {
			out = append(out, i)
		}
	}
	return out
}

// Format renders the vector as a string of 0/1 digits, lowest index first.
func Format(bv BitVector) string {
	var b strings.Builder
	for i := 0; i < bv.Len(); i++ {
		if bv.Get(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
