// Copyright (c) 2025 @AmarnathCJD

// Package sm4 implements the SM4 block cipher (GB/T 32907-2016) and the
// ECB mode with byte padding used to seal login parameters.
package sm4

import (
	"crypto/cipher"
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"
)

const (
	BlockSize = 16
	KeySize   = 16
	rounds    = 32
)

// Schedule is the expanded set of round keys for one cipher key.
type Schedule struct {
	rk [rounds]uint32
}

var _ cipher.Block = (*Schedule)(nil)

func NewSchedule(key []byte) (*Schedule, error) {
	if len(key) != KeySize {
		return nil, errors.Wrapf(ErrInvalidKeySize, "got %d bytes", len(key))
	}

	var k [rounds + 4]uint32
	for i := 0; i < 4; i++ {
		k[i] = binary.BigEndian.Uint32(key[4*i:]) ^ fk[i]
	}

	s := new(Schedule)
	for i := 0; i < rounds; i++ {
		k[i+4] = k[i] ^ keyTransform(k[i+1]^k[i+2]^k[i+3]^ck[i])
		s.rk[i] = k[i+4]
	}
	return s, nil
}

// NewCipher returns key's schedule as a cipher.Block.
func NewCipher(key []byte) (cipher.Block, error) {
	return NewSchedule(key)
}

// RoundKey returns the i-th round key.
func (s *Schedule) RoundKey(i int) uint32 { return s.rk[i] }

func (s *Schedule) BlockSize() int { return BlockSize }

func (s *Schedule) Encrypt(dst, src []byte) { s.EncryptBlock(dst, src) }
func (s *Schedule) Decrypt(dst, src []byte) { s.DecryptBlock(dst, src) }

func (s *Schedule) EncryptBlock(dst, src []byte) {
	cryptBlock(&s.rk, dst, src, false)
}

// DecryptBlock runs the same rounds with the round keys reversed.
func (s *Schedule) DecryptBlock(dst, src []byte) {
	cryptBlock(&s.rk, dst, src, true)
}

func cryptBlock(rk *[rounds]uint32, dst, src []byte, decrypt bool) {
	if len(src) < BlockSize || len(dst) < BlockSize {
		panic("sm4: input not full block")
	}

	x0 := binary.BigEndian.Uint32(src[0:])
	x1 := binary.BigEndian.Uint32(src[4:])
	x2 := binary.BigEndian.Uint32(src[8:])
	x3 := binary.BigEndian.Uint32(src[12:])

	for i := 0; i < rounds; i++ {
		k := rk[i]
		if decrypt {
			k = rk[rounds-1-i]
		}
		x0, x1, x2, x3 = x1, x2, x3, x0^roundTransform(x1^x2^x3^k)
	}

	// the output is the last four words in reverse order
	binary.BigEndian.PutUint32(dst[0:], x3)
	binary.BigEndian.PutUint32(dst[4:], x2)
	binary.BigEndian.PutUint32(dst[8:], x1)
	binary.BigEndian.PutUint32(dst[12:], x0)
}

// tau applies the S-box to each byte of a word.
func tau(a uint32) uint32 {
	return uint32(sbox[a>>24])<<24 |
		uint32(sbox[a>>16&0xff])<<16 |
		uint32(sbox[a>>8&0xff])<<8 |
		uint32(sbox[a&0xff])
}

func roundTransform(a uint32) uint32 {
	b := tau(a)
	return b ^ bits.RotateLeft32(b, 2) ^ bits.RotateLeft32(b, 10) ^
		bits.RotateLeft32(b, 18) ^ bits.RotateLeft32(b, 24)
}

func keyTransform(a uint32) uint32 {
	b := tau(a)
	return b ^ bits.RotateLeft32(b, 13) ^ bits.RotateLeft32(b, 23)
}
