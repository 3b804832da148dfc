// Package ctbytes provides branch-free byte and index primitives.
//
// Every function runs in time that depends only on the lengths of its slice
// arguments, never on their contents or on the values of its integer arguments.
// Predicates return 1 for true and 0 for false so results compose with & and |.
//
// Index arguments must be in [0, 1<<31).
package ctbytes

import "crypto/subtle"

// Mask widens a 0/1 bit to 0x00/0xFF.
func Mask(bit byte) byte { return -(bit & 1) }

// Not inverts a 0/1 bit.
func Not(bit byte) byte { return (bit & 1) ^ 1 }

// Eq reports a == b.
func Eq(a, b byte) byte { return byte(subtle.ConstantTimeByteEq(a, b)) }

// Less reports a < b.
func Less(a, b byte) byte { return byte((uint32(a) - uint32(b)) >> 31) }

// InRange reports lo <= c <= hi.
func InRange(c, lo, hi byte) byte { return Not(Less(c, lo)) & Not(Less(hi, c)) }

// Select returns a when bit is 1 and b when bit is 0.
func Select(bit, a, b byte) byte { return b ^ (Mask(bit) & (a ^ b)) }

// EqInt reports a == b.
func EqInt(a, b int) byte { return byte(subtle.ConstantTimeEq(int32(a), int32(b))) }

// LessInt reports a < b.
func LessInt(a, b int) byte { return byte(1 - subtle.ConstantTimeLessOrEq(b, a)) }

// SelectInt returns a when bit is 1 and b when bit is 0.
func SelectInt(bit byte, a, b int) int { return subtle.ConstantTimeSelect(int(bit&1), a, b) }

// Bit returns bit k of v.
func Bit(v, k int) byte { return byte((v >> uint(k)) & 1) }

// ToLower folds ASCII A-Z to a-z and leaves every other byte alone.
func ToLower(c byte) byte { return c | (InRange(c, 'A', 'Z') << 5) }

// ToUpper folds ASCII a-z to A-Z and leaves every other byte alone.
func ToUpper(c byte) byte { return c ^ (InRange(c, 'a', 'z') << 5) }

// IsAlpha reports an ASCII letter.
func IsAlpha(c byte) byte { return InRange(c, 'a', 'z') | InRange(c, 'A', 'Z') }

// IsDigit reports an ASCII digit.
func IsDigit(c byte) byte { return InRange(c, '0', '9') }

// IsHex reports an ASCII hex digit of either case.
func IsHex(c byte) byte { return IsDigit(c) | InRange(c, 'a', 'f') | InRange(c, 'A', 'F') }

// Lookup returns buf[idx] by scanning all of buf. It returns 0 when idx is out
// of range.
func Lookup(buf []byte, idx int) byte {
	var v byte
	for i := range buf {
		v |= buf[i] & Mask(EqInt(i, idx))
	}
	return v
}

// Greater reports whether a sorts after b. Both slices must have the same
// length.
func Greater(a, b []byte) byte {
	var gt, decided byte
	for j := range a {
		g := Less(b[j], a[j])
		l := Less(a[j], b[j])
		gt |= g & Not(decided)
		decided |= g | l
	}
	return gt
}

// CondSwap exchanges the contents of a and b when bit is 1. Both slices must
// have the same length.
func CondSwap(bit byte, a, b []byte) {
	m := Mask(bit)
	for j := range a {
		t := (a[j] ^ b[j]) & m
		a[j] ^= t
		b[j] ^= t
	}
}
