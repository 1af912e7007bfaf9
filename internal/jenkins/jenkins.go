// Package jenkins implements Bob Jenkins' lookup3 hash (hashlittle and
// hashlittle2).
//
// The on-disk index files store digests produced by this exact algorithm;
// every verification step in the storage bootstrap depends on a
// byte-for-byte match, so the implementation follows the little-endian
// variant of lookup3.c precisely, including the no-finalization shortcut
// for empty input.
//
// HashLittle2 is chainable: the (c, b) pair returned by one call seeds the
// next, which is how multi-record payloads are accumulated.
package jenkins

import (
	"encoding/binary"
	"math/bits"
)

const initMagic = 0xdeadbeef

// HashLittle computes the 32-bit lookup3 hash of data with the given seed.
func HashLittle(data []byte, seed uint32) uint32 {
	c, _ := HashLittle2(data, seed, 0)
	return c
}

// HashLittle2 computes both 32-bit halves of the lookup3 hash. The pc and
// pb arguments seed the computation; passing the previous call's results
// accumulates a hash over disjoint byte ranges.
//
// The first return value (c) is the primary hash and equals what
// HashLittle would return for the same pc seed when pb is zero.
func HashLittle2(data []byte, pc, pb uint32) (uint32, uint32) {
	a := initMagic + uint32(len(data)) + pc
	b := a
	c := a + pb

	k := data
	for len(k) > 12 {
		a += binary.LittleEndian.Uint32(k[0:4])
		b += binary.LittleEndian.Uint32(k[4:8])
		c += binary.LittleEndian.Uint32(k[8:12])
		a, b, c = mix(a, b, c)
		k = k[12:]
	}

	// Tail of 0..12 bytes, composed little-endian. Zero remaining bytes
	// skip finalization, matching the reference.
	switch len(k) {
	case 12:
		c += uint32(k[11]) << 24
		fallthrough
	case 11:
		c += uint32(k[10]) << 16
		fallthrough
	case 10:
		c += uint32(k[9]) << 8
		fallthrough
	case 9:
		c += uint32(k[8])
		fallthrough
	case 8:
		b += uint32(k[7]) << 24
		fallthrough
	case 7:
		b += uint32(k[6]) << 16
		fallthrough
	case 6:
		b += uint32(k[5]) << 8
		fallthrough
	case 5:
		b += uint32(k[4])
		fallthrough
	case 4:
		a += uint32(k[3]) << 24
		fallthrough
	case 3:
		a += uint32(k[2]) << 16
		fallthrough
	case 2:
		a += uint32(k[1]) << 8
		fallthrough
	case 1:
		a += uint32(k[0])
	case 0:
		return c, b
	}

	a, b, c = final(a, b, c)

	return c, b
}

// mix thoroughly mixes three 32-bit values, reversibly.
func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= bits.RotateLeft32(c, 4)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 6)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 8)
	b += a
	a -= c
	a ^= bits.RotateLeft32(c, 16)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 19)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 4)
	b += a

	return a, b, c
}

// final applies the last mixing round before the hash is reported.
func final(a, b, c uint32) (uint32, uint32, uint32) {
	c ^= b
	c -= bits.RotateLeft32(b, 14)
	a ^= c
	a -= bits.RotateLeft32(c, 11)
	b ^= a
	b -= bits.RotateLeft32(a, 25)
	c ^= b
	c -= bits.RotateLeft32(b, 16)
	a ^= c
	a -= bits.RotateLeft32(c, 4)
	b ^= a
	b -= bits.RotateLeft32(a, 14)
	c ^= b
	c -= bits.RotateLeft32(b, 24)

	return a, b, c
}
