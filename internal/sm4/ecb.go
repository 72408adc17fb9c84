// Copyright (c) 2025 @AmarnathCJD

package sm4

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Pad appends 1..16 bytes, each holding the pad length. Aligned input
// gains a whole block.
func Pad(data []byte) []byte {
	padding := BlockSize - len(data)%BlockSize
	out := make([]byte, len(data), len(data)+padding)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

// Unpad strips the padding added by Pad.
func Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "%d bytes", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize {
		return nil, errors.Wrapf(ErrInvalidPadding, "pad byte %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.Wrap(ErrInvalidPadding, "inconsistent pad bytes")
		}
	}
	return data[:len(data)-n], nil
}

// Seal pads plaintext and encrypts every block independently.
func (s *Schedule) Seal(plaintext []byte) []byte {
	out := Pad(plaintext)
	for i := 0; i < len(out); i += BlockSize {
		s.EncryptBlock(out[i:i+BlockSize], out[i:i+BlockSize])
	}
	return out
}

// Open decrypts ciphertext block by block and removes the padding.
func (s *Schedule) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, errors.Wrapf(ErrInvalidLength, "%d bytes", len(ciphertext))
	}
	out := make([]byte, len(ciphertext))
	for i := 0; i < len(out); i += BlockSize {
		s.DecryptBlock(out[i:i+BlockSize], ciphertext[i:i+BlockSize])
	}
	return Unpad(out)
}

func Encrypt(key, plaintext []byte) ([]byte, error) {
	s, err := NewSchedule(key)
	if err != nil {
		return nil, err
	}
	return s.Seal(plaintext), nil
}

func Decrypt(key, ciphertext []byte) ([]byte, error) {
	s, err := NewSchedule(key)
	if err != nil {
		return nil, err
	}
	return s.Open(ciphertext)
}

// ParseKey decodes a 32 character hex key.
func ParseKey(keyHex string) ([]byte, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidKeySize, err.Error())
	}
	if len(key) != KeySize {
		return nil, errors.Wrapf(ErrInvalidKeySize, "got %d bytes", len(key))
	}
	return key, nil
}

// EncryptString encrypts the UTF-8 bytes of plaintext and returns lowercase
// hex, the form the login endpoints accept as encParams.
func EncryptString(plaintext string, key []byte) (string, error) {
	ct, err := Encrypt(key, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(ct), nil
}

func DecryptString(ciphertextHex string, key []byte) (string, error) {
	ct, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", errors.Wrap(ErrInvalidLength, err.Error())
	}
	pt, err := Decrypt(key, ct)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
