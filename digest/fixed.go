package digest

import (
	"encoding/binary"
	"math/bits"

	"xdao.co/resumehash/internal/ctbytes"
)

const blockSize = 64

var iv = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

var roundK = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// SumFixed returns the SHA-256 digest of buf[:n] without revealing n through
// its running time or memory access pattern.
//
// It compresses every block a message of len(buf) bytes could need. Each
// block is rebuilt byte by byte from buf, the 0x80 terminator and the length
// field using masks, and the chaining state after the block that really ends
// the message is captured with a masked copy. n must be in [0, len(buf)].
func SumFixed(buf []byte, n int) [Size]byte {
	blocks := (len(buf) + 9 + blockSize - 1) / blockSize
	last := (n + 8) / blockSize

	var lenField [8]byte
	binary.BigEndian.PutUint64(lenField[:], uint64(n)<<3)

	state := iv
	var final [8]uint32
	var block [blockSize]byte
	for bi := 0; bi < blocks; bi++ {
		isLast := ctbytes.EqInt(bi, last)
		for j := 0; j < blockSize; j++ {
			p := bi*blockSize + j
			var c byte
			if p < len(buf) {
				c = buf[p]
			}
			v := c & ctbytes.Mask(ctbytes.LessInt(p, n))
			v |= 0x80 & ctbytes.Mask(ctbytes.EqInt(p, n))
			if j >= blockSize-8 {
				v = ctbytes.Select(isLast, lenField[j-(blockSize-8)], v)
			}
			block[j] = v
		}
		compress(&state, &block)

		m := -uint32(isLast)
		for i := range final {
			final[i] ^= m & (final[i] ^ state[i])
		}
	}

	var out [Size]byte
	for i, s := range final {
		binary.BigEndian.PutUint32(out[i*4:], s)
	}
	clear(block[:])
	return out
}

// compress runs the SHA-256 compression function over one block.
func compress(state *[8]uint32, block *[blockSize]byte) {
	var w [64]uint32
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(block[i*4:])
	}
	for i := 16; i < 64; i++ {
		v1 := w[i-2]
		t1 := bits.RotateLeft32(v1, -17) ^ bits.RotateLeft32(v1, -19) ^ (v1 >> 10)
		v2 := w[i-15]
		t2 := bits.RotateLeft32(v2, -7) ^ bits.RotateLeft32(v2, -18) ^ (v2 >> 3)
		w[i] = t1 + w[i-7] + t2 + w[i-16]
	}

	a, b, c, d, e, f, g, h := state[0], state[1], state[2], state[3], state[4], state[5], state[6], state[7]
	for i := 0; i < 64; i++ {
		t1 := h + (bits.RotateLeft32(e, -6) ^ bits.RotateLeft32(e, -11) ^ bits.RotateLeft32(e, -25)) +
			((e & f) ^ (^e & g)) + roundK[i] + w[i]
		t2 := (bits.RotateLeft32(a, -2) ^ bits.RotateLeft32(a, -13) ^ bits.RotateLeft32(a, -22)) +
			((a & b) ^ (a & c) ^ (b & c))
		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	state[0] += a
	state[1] += b
	state[2] += c
	state[3] += d
	state[4] += e
	state[5] += f
	state[6] += g
	state[7] += h
}
