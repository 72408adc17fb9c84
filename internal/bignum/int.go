// Copyright (c) 2025 @AmarnathCJD

// Package bignum implements the signed arbitrary precision integers used by
// the RSA and delay-function code. Values are immutable: every operation
// allocates its result and never writes to an operand.
package bignum

import (
	"strings"

	"github.com/pkg/errors"
)

// Int is a signed integer of unbounded size. The zero value is 0.
type Int struct {
	neg bool
	abs nat
}

func newInt(neg bool, abs nat) *Int {
	abs = abs.norm()
	return &Int{neg: neg && len(abs) > 0, abs: abs}
}

func FromInt64(v int64) *Int {
	if v < 0 {
		return newInt(true, natFromUint64(uint64(-(v + 1))+1))
	}
	return newInt(false, natFromUint64(uint64(v)))
}

func FromUint64(v uint64) *Int {
	return newInt(false, natFromUint64(v))
}

// FromBytes interprets b as an unsigned big-endian magnitude.
func FromBytes(b []byte) *Int {
	return newInt(false, natFromBytes(b))
}

// FromHex parses an optionally signed hexadecimal string. A "0x" prefix is
// accepted and digits may be in either case.
func FromHex(s string) (*Int, error) {
	neg, digits := splitSign(s)
	digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0x"), "0X")
	if digits == "" {
		return nil, errors.Wrapf(ErrParse, "empty hex string %q", s)
	}

	z := make(nat, (len(digits)+7)/8)
	for i := 0; i < len(digits); i++ {
		c := digits[len(digits)-1-i]
		d, ok := hexValue(c)
		if !ok {
			return nil, errors.Wrapf(ErrParse, "invalid hex digit %q", c)
		}
		z[i/8] |= Word(d) << (4 * uint(i%8))
	}
	return newInt(neg, z), nil
}

// FromDecimal parses an optionally signed base-10 string.
func FromDecimal(s string) (*Int, error) {
	neg, digits := splitSign(s)
	if digits == "" {
		return nil, errors.Wrapf(ErrParse, "empty decimal string %q", s)
	}

	var z nat
	for len(digits) > 0 {
		n := len(digits)
		if n > decimalChunk {
			n = decimalChunk
		}
		var chunk, scale Word = 0, 1
		for i := 0; i < n; i++ {
			c := digits[i]
			if c < '0' || c > '9' {
				return nil, errors.Wrapf(ErrParse, "invalid decimal digit %q", c)
			}
			chunk = chunk*10 + Word(c-'0')
			scale *= 10
		}
		z = mulAddWord(z, scale, chunk)
		digits = digits[n:]
	}
	return newInt(neg, z), nil
}

// 10^9 is the largest power of ten that fits a Word.
const (
	decimalChunk = 9
	decimalBase  = 1000000000
)

func splitSign(s string) (bool, string) {
	if strings.HasPrefix(s, "-") {
		return true, s[1:]
	}
	return false, strings.TrimPrefix(s, "+")
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Sign returns -1, 0 or +1.
func (x *Int) Sign() int {
	switch {
	case len(x.abs) == 0:
		return 0
	case x.neg:
		return -1
	}
	return 1
}

func (x *Int) IsZero() bool { return len(x.abs) == 0 }
func (x *Int) IsOdd() bool  { return x.abs.isOdd() }

// BitLen returns the bit length of |x|.
func (x *Int) BitLen() int { return x.abs.bitLen() }

// ByteLen returns the number of bytes needed to hold |x|.
func (x *Int) ByteLen() int { return x.abs.byteLen() }

// Bit reports whether bit i of |x| is set.
func (x *Int) Bit(i int) bool { return x.abs.bit(i) }

// Cmp compares x and y taking signs into account.
func (x *Int) Cmp(y *Int) int {
	switch {
	case x.neg && !y.neg:
		return -1
	case !x.neg && y.neg:
		return 1
	case x.neg:
		return cmpNat(y.abs, x.abs)
	}
	return cmpNat(x.abs, y.abs)
}

// CmpAbs compares |x| and |y|.
func (x *Int) CmpAbs(y *Int) int { return cmpNat(x.abs, y.abs) }

// Compare is the functional form of Cmp.
func Compare(a, b *Int) int { return a.Cmp(b) }

func (x *Int) Uint64() uint64 {
	var v uint64
	if len(x.abs) > 0 {
		v = uint64(x.abs[0])
	}
	if len(x.abs) > 1 {
		v |= uint64(x.abs[1]) << wordBits
	}
	return v
}

// Hex returns the lowercase hexadecimal form without leading zeros.
func (x *Int) Hex() string {
	if len(x.abs) == 0 {
		return "0"
	}
	const digits = "0123456789abcdef"
	buf := make([]byte, 0, len(x.abs)*8+1)
	for i := len(x.abs) - 1; i >= 0; i-- {
		w := x.abs[i]
		for k := 7; k >= 0; k-- {
			d := byte(w>>(4*uint(k))) & 0xf
			if len(buf) == 0 && d == 0 {
				continue
			}
			buf = append(buf, digits[d])
		}
	}
	if x.neg {
		return "-" + string(buf)
	}
	return string(buf)
}

// String returns the decimal form.
func (x *Int) String() string {
	if len(x.abs) == 0 {
		return "0"
	}
	var chunks []Word
	q := x.abs
	for len(q) > 0 {
		var r Word
		q, r = divWordNat(q, decimalBase)
		chunks = append(chunks, r)
	}

	var b strings.Builder
	if x.neg {
		b.WriteByte('-')
	}
	b.WriteString(uitoa(chunks[len(chunks)-1], false))
	for i := len(chunks) - 2; i >= 0; i-- {
		b.WriteString(uitoa(chunks[i], true))
	}
	return b.String()
}

func uitoa(w Word, pad bool) string {
	var buf [decimalChunk]byte
	i := len(buf)
	for w > 0 || (pad && i > 0) || i == len(buf) {
		i--
		buf[i] = byte('0' + w%10)
		w /= 10
	}
	return string(buf[i:])
}

// Bytes returns |x| as a minimal big-endian byte slice.
func (x *Int) Bytes() []byte {
	buf := make([]byte, x.abs.byteLen())
	x.abs.fillBytes(buf)
	return buf
}

// FillBytes returns |x| left-padded with zeros to exactly length bytes.
func (x *Int) FillBytes(length int) ([]byte, error) {
	if n := x.abs.byteLen(); n > length {
		return nil, errors.Wrapf(ErrEncodingTooShort, "need %d bytes, have %d", n, length)
	}
	buf := make([]byte, length)
	x.abs.fillBytes(buf)
	return buf, nil
}
