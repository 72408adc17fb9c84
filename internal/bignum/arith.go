// Copyright (c) 2025 @AmarnathCJD

package bignum

import "github.com/pkg/errors"

func Add(a, b *Int) *Int {
	if a.neg == b.neg {
		return newInt(a.neg, addNat(a.abs, b.abs))
	}
	if cmpNat(a.abs, b.abs) >= 0 {
		return newInt(a.neg, subNat(a.abs, b.abs))
	}
	return newInt(b.neg, subNat(b.abs, a.abs))
}

func Sub(a, b *Int) *Int {
	return Add(a, &Int{neg: !b.neg && len(b.abs) > 0, abs: b.abs})
}

func Mul(a, b *Int) *Int {
	return newInt(a.neg != b.neg, mulNat(a.abs, b.abs))
}

// Sqr returns a*a using the dedicated squaring routine.
func Sqr(a *Int) *Int {
	return newInt(false, sqrNat(a.abs))
}

func Neg(a *Int) *Int {
	return newInt(!a.neg, a.abs.clone())
}

func Abs(a *Int) *Int {
	return newInt(false, a.abs.clone())
}

// Lsh returns a shifted left by n bits. The sign is preserved.
func Lsh(a *Int, n uint) *Int {
	return newInt(a.neg, shlNat(a.abs, n))
}

// Rsh shifts the magnitude of a right by n bits, so negative values are
// truncated toward zero.
func Rsh(a *Int, n uint) *Int {
	return newInt(a.neg, shrNat(a.abs, n))
}

// DivRem performs truncated division: q is rounded toward zero and r takes
// the sign of a, so that a == q*b + r and |r| < |b|.
func DivRem(a, b *Int) (q, r *Int, err error) {
	if len(b.abs) == 0 {
		return nil, nil, errors.WithStack(ErrDivisionByZero)
	}
	qa, ra := divNat(a.abs, b.abs)
	return newInt(a.neg != b.neg, qa), newInt(a.neg, ra), nil
}

// Mod returns a reduced into [0, |m|).
func Mod(a, m *Int) (*Int, error) {
	if len(m.abs) == 0 {
		return nil, errors.WithStack(ErrDivisionByZero)
	}
	_, r := divNat(a.abs, m.abs)
	if a.neg && len(r) > 0 {
		r = subNat(m.abs, r)
	}
	return newInt(false, r), nil
}
