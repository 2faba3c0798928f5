// SPDX-License-Identifier: MIT

package bitvec

import "fmt"

// MaxPackedLen is the largest vector length Packed can hold: the value bits
// of a uint64 minus the 6 bits used to store the length.
const MaxPackedLen = 58

// Packed is a bit vector stored in a single uint64, with the vector length
// tagged in the top 6 bits. It is a value type: copying a Packed copies the
// vector.
type Packed struct {
	bits uint64
}

var _ BitVector = (*Packed)(nil)

// NewPacked creates a zeroed Packed vector of the given length.
func NewPacked(length int) (Packed, error) {
	if length < 0 || length > MaxPackedLen {
		return Packed{}, fmt.Errorf("bitvec: packed vector supports 0-%d bits, got %d", MaxPackedLen, length)
	}
	return Packed{bits: uint64(length) << MaxPackedLen}, nil
}

// PackedFromBools creates a Packed vector holding the given values.
func PackedFromBools(values []bool) (Packed, error) {
	p, err := NewPacked(len(values))
	if err != nil {
		return Packed{}, err
	}
	for i, v := range values {
		p.Set(i, v)
	}
	return p, nil
}

// PackedFromOnes creates a Packed vector of the given length with the listed
// indices set.
func PackedFromOnes(length int, ones []int) (Packed, error) {
	p, err := NewPacked(length)
	if err != nil {
		return Packed{}, err
	}
	for _, i := range ones {
		p.Set(i, true)
	}
	return p, nil
}

// Len returns the number of bits in the vector.
func (p *Packed) Len() int {
	return int(p.bits >> MaxPackedLen)
}

// Get returns the bit at the given index.
func (p *Packed) Get(index int) bool {
	p.checkAccess(index)
	return p.bits&(uint64(1)<<index) != 0
}

// Set writes the bit at the given index.
func (p *Packed) Set(index int, value bool) {
	p.checkAccess(index)
	if value {
		p.bits |= uint64(1) << index
	} else {
		p.bits &^= uint64(1) << index
	}
}

// Flip inverts the bit at the given index.
func (p *Packed) Flip(index int) {
	p.checkAccess(index)
	p.bits ^= uint64(1) << index
}

func (p *Packed) checkAccess(index int) {
	if index < 0 || index >= p.Len() {
		panic(fmt.Sprintf("bitvec: accessing bit %d in a vector of length %d", index, p.Len()))
	}
}

func (p Packed) String() string {
	return Format(&p)
}
