// Copyright (c) 2025 @AmarnathCJD

// Package rsa implements RSA public-key encryption with PKCS#1 v1.5 type 2
// padding on top of the bignum engine.
package rsa

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/amarnathcjd/moocauth/internal/bignum"
	"github.com/pkg/errors"
)

// paddingOverhead is the 00 02 header, the 00 separator and the minimum
// eight bytes of random padding.
const paddingOverhead = 11

var (
	ErrMessageTooLong = errors.New("rsa: message too long for key size")
	ErrInvalidKey     = errors.New("rsa: invalid public key")
)

type PublicKey struct {
	N *bignum.Int
	E *bignum.Int
}

// NewPublicKey checks that the modulus and exponent are usable.
func NewPublicKey(n, e *bignum.Int) (*PublicKey, error) {
	switch {
	case n == nil || e == nil:
		return nil, errors.Wrap(ErrInvalidKey, "missing modulus or exponent")
	case n.Sign() <= 0 || !n.IsOdd():
		return nil, errors.Wrap(ErrInvalidKey, "modulus must be positive and odd")
	case n.ByteLen() < paddingOverhead+1:
		return nil, errors.Wrapf(ErrInvalidKey, "modulus of %d bits is too small", n.BitLen())
	case e.Sign() <= 0:
		return nil, errors.Wrap(ErrInvalidKey, "exponent must be positive")
	}
	return &PublicKey{N: n, E: e}, nil
}

// Size returns the modulus length in bytes.
func (k *PublicKey) Size() int {
	return k.N.ByteLen()
}

// MaxMessageLen is the longest plaintext Encrypt accepts for this key.
func (k *PublicKey) MaxMessageLen() int {
	return k.Size() - paddingOverhead
}

// Encrypt pads msg as 00 02 PS 00 msg, where PS is non-zero random bytes,
// and returns block^E mod N as exactly Size() bytes. A nil random uses
// crypto/rand.
func Encrypt(random io.Reader, pub *PublicKey, msg []byte) ([]byte, error) {
	k := pub.Size()
	if len(msg) > k-paddingOverhead {
		return nil, errors.Wrapf(ErrMessageTooLong, "%d bytes, limit %d", len(msg), k-paddingOverhead)
	}
	if random == nil {
		random = rand.Reader
	}

	em := make([]byte, k)
	em[1] = 2
	ps, mm := em[2:len(em)-len(msg)-1], em[len(em)-len(msg):]
	if err := nonZeroRandomBytes(ps, random); err != nil {
		return nil, errors.Wrap(err, "generating padding")
	}
	copy(mm, msg)

	c, err := bignum.ModPow(bignum.FromBytes(em), pub.E, pub.N)
	if err != nil {
		return nil, errors.Wrap(err, "modpow")
	}
	return c.FillBytes(k)
}

// EncryptBase64 encrypts the UTF-8 bytes of text and encodes the result
// with standard base64, the form the login form submits.
func EncryptBase64(random io.Reader, pub *PublicKey, text string) (string, error) {
	c, err := Encrypt(random, pub, []byte(text))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(c), nil
}

func EncryptHex(random io.Reader, pub *PublicKey, text string) (string, error) {
	c, err := Encrypt(random, pub, []byte(text))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(c), nil
}

func nonZeroRandomBytes(s []byte, random io.Reader) error {
	if _, err := io.ReadFull(random, s); err != nil {
		return err
	}
	for i := range s {
		for s[i] == 0 {
			if _, err := io.ReadFull(random, s[i:i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}
