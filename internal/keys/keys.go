// Copyright (c) 2025 @AmarnathCJD

// Package keys parses and serialises RSA public keys for the rsa package.
package keys

import (
	"bytes"
	"crypto/sha1"
	"encoding/asn1"
	"encoding/base64"
	"encoding/pem"
	"os"
	"strings"

	"github.com/amarnathcjd/moocauth/internal/bignum"
	"github.com/amarnathcjd/moocauth/internal/rsa"
	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var ErrKeyFormat = errors.New("keys: unrecognised public key encoding")

var oidRSAEncryption = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}

// ParsePublicKey accepts a PEM block ("PUBLIC KEY" or "RSA PUBLIC KEY"),
// DER in SubjectPublicKeyInfo or PKCS#1 form, or that DER in base64.
func ParsePublicKey(encoded []byte) (*rsa.PublicKey, error) {
	var derErr error
	if len(encoded) > 0 && encoded[0] == 0x30 {
		key, err := parseDER(encoded)
		if err == nil {
			return key, nil
		}
		derErr = err
	}

	trimmed := bytes.TrimSpace(encoded)
	if len(trimmed) == 0 {
		return nil, errors.Wrap(ErrKeyFormat, "empty input")
	}
	if block, _ := pem.Decode(trimmed); block != nil {
		return parseDER(block.Bytes)
	}

	der, err := base64.StdEncoding.DecodeString(stripSpace(string(trimmed)))
	if err != nil {
		if derErr != nil {
			return nil, derErr
		}
		return nil, errors.Wrap(ErrKeyFormat, "neither PEM, DER nor base64")
	}
	return parseDER(der)
}

// FromModulusExponent builds a key from the hex modulus and exponent pair
// some pages embed instead of a PEM block.
func FromModulusExponent(nHex, eHex string) (*rsa.PublicKey, error) {
	n, err := bignum.FromHex(nHex)
	if err != nil {
		return nil, errors.Wrap(ErrKeyFormat, err.Error())
	}
	e, err := bignum.FromHex(eHex)
	if err != nil {
		return nil, errors.Wrap(ErrKeyFormat, err.Error())
	}
	key, err := rsa.NewPublicKey(n, e)
	if err != nil {
		return nil, errors.Wrap(ErrKeyFormat, err.Error())
	}
	return key, nil
}

// ReadFromFile loads every PEM encoded public key in path.
func ReadFromFile(path string) ([]*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	keys := make([]*rsa.PublicKey, 0)
	for {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}

		key, err := parseDER(block.Bytes)
		if err != nil {
			const offset = 1
			return nil, errors.Wrapf(err, "key at offset %d", len(data)-len(rest)+offset)
		}

		keys = append(keys, key)
		data = rest
	}
	if len(keys) == 0 {
		return nil, errors.Wrapf(ErrKeyFormat, "no PEM blocks in %s", path)
	}
	return keys, nil
}

func parseDER(der []byte) (*rsa.PublicKey, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, errors.Wrap(ErrKeyFormat, "outer sequence")
	}

	// SubjectPublicKeyInfo starts with an AlgorithmIdentifier sequence,
	// PKCS#1 with the modulus integer.
	if seq.PeekASN1Tag(cbasn1.SEQUENCE) {
		return parseSPKI(seq)
	}
	return parsePKCS1(seq)
}

func parseSPKI(seq cryptobyte.String) (*rsa.PublicKey, error) {
	var (
		algo cryptobyte.String
		oid  asn1.ObjectIdentifier
		bits asn1.BitString
	)
	if !seq.ReadASN1(&algo, cbasn1.SEQUENCE) || !algo.ReadASN1ObjectIdentifier(&oid) {
		return nil, errors.Wrap(ErrKeyFormat, "algorithm identifier")
	}
	if !oid.Equal(oidRSAEncryption) {
		return nil, errors.Wrapf(ErrKeyFormat, "algorithm %s is not rsaEncryption", oid)
	}
	if !seq.ReadASN1BitString(&bits) || bits.BitLength%8 != 0 {
		return nil, errors.Wrap(ErrKeyFormat, "subjectPublicKey bit string")
	}

	inner := cryptobyte.String(bits.Bytes)
	var pkcs1 cryptobyte.String
	if !inner.ReadASN1(&pkcs1, cbasn1.SEQUENCE) {
		return nil, errors.Wrap(ErrKeyFormat, "RSAPublicKey sequence")
	}
	return parsePKCS1(pkcs1)
}

func parsePKCS1(seq cryptobyte.String) (*rsa.PublicKey, error) {
	n, ok := readUnsigned(&seq)
	if !ok {
		return nil, errors.Wrap(ErrKeyFormat, "modulus")
	}
	e, ok := readUnsigned(&seq)
	if !ok || !seq.Empty() {
		return nil, errors.Wrap(ErrKeyFormat, "public exponent")
	}

	key, err := rsa.NewPublicKey(n, e)
	if err != nil {
		return nil, errors.Wrap(ErrKeyFormat, err.Error())
	}
	return key, nil
}

// readUnsigned reads a DER INTEGER that must be non-negative.
func readUnsigned(s *cryptobyte.String) (*bignum.Int, bool) {
	var raw cryptobyte.String
	if !s.ReadASN1(&raw, cbasn1.INTEGER) || len(raw) == 0 || raw[0]&0x80 != 0 {
		return nil, false
	}
	return bignum.FromBytes(raw), true
}

// MarshalPKCS1 encodes key as a DER RSAPublicKey.
func MarshalPKCS1(key *rsa.PublicKey) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		addUnsigned(b, key.N)
		addUnsigned(b, key.E)
	})
	return b.Bytes()
}

// MarshalPKIX encodes key as a DER SubjectPublicKeyInfo.
func MarshalPKIX(key *rsa.PublicKey) ([]byte, error) {
	pkcs1, err := MarshalPKCS1(key)
	if err != nil {
		return nil, err
	}

	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oidRSAEncryption)
			b.AddASN1(cbasn1.NULL, func(*cryptobyte.Builder) {})
		})
		b.AddASN1(cbasn1.BIT_STRING, func(b *cryptobyte.Builder) {
			b.AddUint8(0) // no unused bits
			b.AddBytes(pkcs1)
		})
	})
	return b.Bytes()
}

func addUnsigned(b *cryptobyte.Builder, x *bignum.Int) {
	b.AddASN1(cbasn1.INTEGER, func(b *cryptobyte.Builder) {
		raw := x.Bytes()
		if len(raw) == 0 || raw[0]&0x80 != 0 {
			b.AddUint8(0)
		}
		b.AddBytes(raw)
	})
}

// EncodePEM returns key as a "PUBLIC KEY" PEM block.
func EncodePEM(key *rsa.PublicKey) (string, error) {
	der, err := MarshalPKIX(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// Fingerprint returns the last 8 bytes of SHA-1 over the PKCS#1 encoding.
func Fingerprint(key *rsa.PublicKey) ([]byte, error) {
	der, err := MarshalPKCS1(key)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[len(sum)-8:], nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
