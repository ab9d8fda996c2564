package math

import (
	"errors"
	"math/bits"
)

var ErrOverflowUint64 = errors.New("uint64 overflow")
var ErrUnderflowUint64 = errors.New("uint64 underflow")

// SafeAddUint64 adds two uint64 integers
// If there is an overflow it returns an error
func SafeAddUint64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflowUint64
	}
	return sum, nil
}

// SafeSubUint64 subtracts b from a
// If b is greater than a it returns an error
func SafeSubUint64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrUnderflowUint64
	}
	return a - b, nil
}

// SafeMulUint64 multiplies two uint64 integers
// If there is an overflow it returns an error
func SafeMulUint64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflowUint64
	}
	return lo, nil
}

// MinUint64 returns the smaller of a and b.
func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
