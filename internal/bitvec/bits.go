// SPDX-License-Identifier: MIT

package bitvec

import "fmt"

// Bits is a slice-backed bit vector with no length cap.
type Bits []bool

var _ BitVector = (*Bits)(nil)

// NewBits creates a zeroed Bits vector of the given length.
func NewBits(length int) Bits {
	return make(Bits, length)
}

// BitsFromOnes creates a Bits vector of the given length with the listed
// indices set.
func BitsFromOnes(length int, ones []int) Bits {
	b := NewBits(length)
	for _, i := range ones {
		b.Set(i, true)
	}
	return b
}

// Len returns the number of bits in the vector.
func (b *Bits) Len() int {
	return len(*b)
}

// Get returns the bit at the given index.
func (b *Bits) Get(index int) bool {
	b.checkAccess(index)
	return (*b)[index]
}

// Set writes the bit at the given index.
func (b *Bits) Set(index int, value bool) {
	b.checkAccess(index)
	(*b)[index] = value
}

// Flip inverts the bit at the given index.
func (b *Bits) Flip(index int) {
	b.checkAccess(index)
	(*b)[index] = !(*b)[index]
}

func (b *Bits) checkAccess(index int) {
	if index < 0 || index >= len(*b) {
		panic(fmt.Sprintf("bitvec: accessing bit %d in a vector of length %d", index, len(*b)))
	}
}

func (b Bits) String() string {
	return Format(&b)
}
