// Copyright (c) 2025 @AmarnathCJD

package vdf

import (
	"encoding/binary"
	"math/bits"
)

const (
	hashC1 = 0xcc9e2d51
	hashC2 = 0x1b873593
)

// Hash32 is MurmurHash3 x86_32 over the bytes of data. The platform uses it
// to sign proofs, seeding it with the iteration count.
func Hash32(data string, seed uint32) uint32 {
	h := seed
	b := []byte(data)
	n := len(b)

	for len(b) >= 4 {
		k := binary.LittleEndian.Uint32(b)
		b = b[4:]

		k *= hashC1
		k = bits.RotateLeft32(k, 15)
		k *= hashC2

		h ^= k
		h = bits.RotateLeft32(h, 13)
		h = h*5 + 0xe6546b64
	}

	var k uint32
	switch len(b) {
	case 3:
		k ^= uint32(b[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(b[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(b[0])
		k *= hashC1
		k = bits.RotateLeft32(k, 15)
		k *= hashC2
		h ^= k
	}

	h ^= uint32(n)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}
