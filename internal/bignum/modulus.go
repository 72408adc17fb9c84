// Copyright (c) 2025 @AmarnathCJD

package bignum

import "github.com/pkg/errors"

// classicExpBits is the exponent size up to which ModPow skips the
// Montgomery set-up cost and reduces by division instead.
const classicExpBits = 8

// Modulus caches everything needed to reduce repeatedly by the same
// positive integer. It is immutable and safe for concurrent use.
type Modulus struct {
	m    nat
	n    int
	mInv Word // -m^-1 mod 2^32, zero when m is even
	rr   nat  // R^2 mod m with R = 2^(32n)
}

func NewModulus(m *Int) (*Modulus, error) {
	switch {
	case len(m.abs) == 0:
		return nil, errors.WithStack(ErrDivisionByZero)
	case m.neg:
		return nil, errors.WithStack(ErrNegativeModulus)
	}

	mod := &Modulus{m: m.abs.clone(), n: len(m.abs)}
	if mod.m.isOdd() {
		mod.mInv = lowDigitInverse(mod.m[0])
		r2 := shlNat(nat{1}, uint(2*mod.n*wordBits))
		_, mod.rr = divNat(r2, mod.m)
	}
	return mod, nil
}

func (m *Modulus) Int() *Int    { return newInt(false, m.m.clone()) }
func (m *Modulus) IsOdd() bool  { return m.m.isOdd() }
func (m *Modulus) BitLen() int  { return m.m.bitLen() }
func (m *Modulus) ByteLen() int { return m.m.byteLen() }

// LowDigitInverse returns -x^-1 mod 2^32 for the least significant limb of
// x, or 0 if x is even or zero.
func (x *Int) LowDigitInverse() Word {
	if !x.abs.isOdd() {
		return 0
	}
	return lowDigitInverse(x.abs[0])
}

// lowDigitInverse uses Newton iteration: an odd d is its own inverse mod 8
// and every step doubles the number of correct low bits.
func lowDigitInverse(d Word) Word {
	inv := d
	for i := 0; i < 4; i++ {
		inv *= 2 - d*inv
	}
	return -inv
}

// Reduce returns x mod m in [0, m).
func (m *Modulus) Reduce(x *Int) *Int {
	r := m.reduce(x.abs)
	if x.neg && len(r) > 0 {
		r = subNat(m.m, r)
	}
	return newInt(false, r)
}

func (m *Modulus) reduce(x nat) nat {
	if cmpNat(x, m.m) < 0 {
		return x.clone()
	}
	_, r := divNat(x, m.m)
	return r
}

// Mul returns a*b mod m for operands already in [0, m).
func (m *Modulus) Mul(a, b *Int) *Int {
	return newInt(false, m.reduce(mulNat(a.abs, b.abs)))
}

// SquareN squares x modulo m n times in a row. Odd moduli stay in the
// Montgomery domain for the whole run and convert back once at the end.
func (m *Modulus) SquareN(x *Int, n int) *Int {
	v := m.Reduce(x).abs
	if n <= 0 {
		return newInt(false, v)
	}
	if !m.IsOdd() {
		for i := 0; i < n; i++ {
			v = m.reduce(sqrNat(v))
		}
		return newInt(false, v)
	}

	v = m.toMont(v)
	for i := 0; i < n; i++ {
		v = m.montReduce(sqrNat(v))
	}
	return newInt(false, m.montReduce(v))
}

// montReduce returns x*R^-1 mod m for 0 <= x < m*R.
func (m *Modulus) montReduce(x nat) nat {
	n := m.n
	t := make(nat, 2*n+1)
	copy(t, x)
	for i := 0; i < n; i++ {
		u := t[i] * m.mInv
		var c uint64
		for j := 0; j < n; j++ {
			s := uint64(u)*uint64(m.m[j]) + uint64(t[i+j]) + c
			t[i+j] = Word(s)
			c = s >> wordBits
		}
		for k := i + n; c != 0; k++ {
			s := uint64(t[k]) + c
			t[k] = Word(s)
			c = s >> wordBits
		}
	}

	r := nat(t[n:]).norm()
	if cmpNat(r, m.m) >= 0 {
		r = subNat(r, m.m)
	}
	return r
}

func (m *Modulus) toMont(x nat) nat {
	return m.montReduce(mulNat(x, m.rr))
}

func (m *Modulus) expClassic(base, e nat) nat {
	acc := m.reduce(nat{1})
	for i := e.bitLen() - 1; i >= 0; i-- {
		acc = m.reduce(sqrNat(acc))
		if e.bit(i) {
			acc = m.reduce(mulNat(acc, base))
		}
	}
	return acc
}

func (m *Modulus) expMontgomery(base, e nat) nat {
	b := m.toMont(base)
	acc := m.toMont(m.reduce(nat{1}))
	for i := e.bitLen() - 1; i >= 0; i-- {
		acc = m.montReduce(sqrNat(acc))
		if e.bit(i) {
			acc = m.montReduce(mulNat(acc, b))
		}
	}
	return m.montReduce(acc)
}

// Exp returns base^e mod m, picking classic reduction for short exponents
// or even moduli and Montgomery reduction otherwise.
func (m *Modulus) Exp(base, e *Int) (*Int, error) {
	if e.neg {
		return nil, errors.WithStack(ErrNegativeExponent)
	}
	b := m.Reduce(base).abs
	if e.BitLen() <= classicExpBits || !m.IsOdd() {
		return newInt(false, m.expClassic(b, e.abs)), nil
	}
	return newInt(false, m.expMontgomery(b, e.abs)), nil
}

// ModPow returns base^exp mod mod for a positive modulus.
func ModPow(base, exp, mod *Int) (*Int, error) {
	m, err := NewModulus(mod)
	if err != nil {
		return nil, err
	}
	return m.Exp(base, exp)
}

// ModPowClassic always reduces by long division.
func ModPowClassic(base, exp, mod *Int) (*Int, error) {
	m, err := NewModulus(mod)
	if err != nil {
		return nil, err
	}
	if exp.neg {
		return nil, errors.WithStack(ErrNegativeExponent)
	}
	return newInt(false, m.expClassic(m.Reduce(base).abs, exp.abs)), nil
}

// ModPowMontgomery always uses Montgomery reduction and so needs an odd
// modulus.
func ModPowMontgomery(base, exp, mod *Int) (*Int, error) {
	m, err := NewModulus(mod)
	if err != nil {
		return nil, err
	}
	if !m.IsOdd() {
		return nil, errors.WithStack(ErrEvenModulus)
	}
	if exp.neg {
		return nil, errors.WithStack(ErrNegativeExponent)
	}
	return newInt(false, m.expMontgomery(m.Reduce(base).abs, exp.abs)), nil
}
