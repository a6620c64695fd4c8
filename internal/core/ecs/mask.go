package ecs

import (
	"math/big"
)

// Mask is an arbitrary-width set of component bits. The zero value is the empty
// mask. Masks are immutable: every mutating operation returns a new Mask.
type Mask struct {
	bits *big.Int
}

// MaskFromBits builds a mask with the given bit positions set.
func MaskFromBits(bits ...int) Mask {
	v := new(big.Int)
	for _, b := range bits {
		v.SetBit(v, b, 1)
	}
	return Mask{bits: v}
}

func (m Mask) int() *big.Int {
	if m.bits == nil {
		return new(big.Int)
	}
	return m.bits
}

// Has reports whether bit is set.
func (m Mask) Has(bit int) bool {
	if m.bits == nil {
		return false
	}
	return m.bits.Bit(bit) == 1
}

// Bit returns bit i as 0 or 1.
func (m Mask) Bit(i int) uint {
	if m.bits == nil {
		return 0
	}
	return m.bits.Bit(i)
}

// With returns a copy of m with bit set.
func (m Mask) With(bit int) Mask {
	v := new(big.Int).Set(m.int())
	return Mask{bits: v.SetBit(v, bit, 1)}
}

// Without returns a copy of m with bit cleared.
func (m Mask) Without(bit int) Mask {
	v := new(big.Int).Set(m.int())
	return Mask{bits: v.SetBit(v, bit, 0)}
}

// Or returns the union of both masks.
func (m Mask) Or(other Mask) Mask {
	return Mask{bits: new(big.Int).Or(m.int(), other.int())}
}

// And returns the intersection of both masks.
func (m Mask) And(other Mask) Mask {
	return Mask{bits: new(big.Int).And(m.int(), other.int())}
}

// ContainsAll reports whether every bit of other is also set in m.
func (m Mask) ContainsAll(other Mask) bool {
	if other.IsZero() {
		return true
	}
	return m.And(other).Equal(other)
}

// IsZero reports whether no bit is set.
func (m Mask) IsZero() bool {
	return m.bits == nil || m.bits.Sign() == 0
}

// Equal reports whether both masks have the same bits.
func (m Mask) Equal(other Mask) bool {
	return m.int().Cmp(other.int()) == 0
}

// BitLen is the position of the highest set bit plus one.
func (m Mask) BitLen() int {
	return m.int().BitLen()
}

// Count returns the number of set bits.
func (m Mask) Count() int {
	n := 0
	v := m.int()
	for i := 0; i < v.BitLen(); i++ {
		if v.Bit(i) == 1 {
			n++
		}
	}
	return n
}

// Bytes is the big-endian encoding of the mask, empty for the zero mask.
func (m Mask) Bytes() []byte {
	return m.int().Bytes()
}

func (m Mask) String() string {
	return "0x" + m.int().Text(16)
}
