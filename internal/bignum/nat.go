// Copyright (c) 2025 @AmarnathCJD

package bignum

import "math/bits"

// Word is a single limb of a magnitude. Products of two words and their
// carries are accumulated in uint64, which holds (2^32-1)^2 + 2(2^32-1)
// exactly.
type Word uint32

const (
	wordBits = 32
	wordBase = uint64(1) << wordBits
	wordMask = wordBase - 1
)

// nat is an unsigned magnitude stored as little-endian limbs. A normalised
// nat has no leading zero limbs and zero is the empty slice.
type nat []Word

func (z nat) norm() nat {
	i := len(z)
	for i > 0 && z[i-1] == 0 {
		i--
	}
	return z[:i]
}

func (z nat) clone() nat {
	if len(z) == 0 {
		return nil
	}
	c := make(nat, len(z))
	copy(c, z)
	return c
}

func natFromUint64(x uint64) nat {
	return nat{Word(x), Word(x >> wordBits)}.norm()
}

func (z nat) isOdd() bool {
	return len(z) > 0 && z[0]&1 == 1
}

func (z nat) bitLen() int {
	if len(z) == 0 {
		return 0
	}
	return (len(z)-1)*wordBits + bits.Len32(uint32(z[len(z)-1]))
}

func (z nat) bit(i int) bool {
	w := i / wordBits
	if w >= len(z) {
		return false
	}
	return z[w]>>(uint(i)%wordBits)&1 == 1
}

func cmpNat(x, y nat) int {
	if len(x) != len(y) {
		if len(x) < len(y) {
			return -1
		}
		return 1
	}
	for i := len(x) - 1; i >= 0; i-- {
		if x[i] != y[i] {
			if x[i] < y[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func addNat(x, y nat) nat {
	if len(x) < len(y) {
		x, y = y, x
	}
	z := make(nat, len(x)+1)
	var c uint64
	for i := range x {
		s := uint64(x[i]) + c
		if i < len(y) {
			s += uint64(y[i])
		}
		z[i] = Word(s)
		c = s >> wordBits
	}
	z[len(x)] = Word(c)
	return z.norm()
}

// subNat returns x - y and requires x >= y.
func subNat(x, y nat) nat {
	z := make(nat, len(x))
	var borrow uint64
	for i := range x {
		var yi uint64
		if i < len(y) {
			yi = uint64(y[i])
		}
		t := uint64(x[i]) - yi - borrow
		z[i] = Word(t)
		borrow = (t >> wordBits) & 1
	}
	return z.norm()
}

// mulAddWord returns x*m + a.
func mulAddWord(x nat, m, a Word) nat {
	z := make(nat, len(x)+1)
	c := uint64(a)
	for i, xi := range x {
		t := uint64(xi)*uint64(m) + c
		z[i] = Word(t)
		c = t >> wordBits
	}
	z[len(x)] = Word(c)
	return z.norm()
}

func mulNat(x, y nat) nat {
	if len(x) == 0 || len(y) == 0 {
		return nil
	}
	z := make(nat, len(x)+len(y))
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		var c uint64
		for j, yj := range y {
			t := uint64(xi)*uint64(yj) + uint64(z[i+j]) + c
			z[i+j] = Word(t)
			c = t >> wordBits
		}
		z[i+len(y)] = Word(c)
	}
	return z.norm()
}

// sqrNat computes x*x by summing each cross product once, doubling the sum
// and then adding the diagonal squares.
func sqrNat(x nat) nat {
	n := len(x)
	if n == 0 {
		return nil
	}
	z := make(nat, 2*n)
	for i := 0; i < n; i++ {
		xi := uint64(x[i])
		var c uint64
		for j := i + 1; j < n; j++ {
			t := xi*uint64(x[j]) + uint64(z[i+j]) + c
			z[i+j] = Word(t)
			c = t >> wordBits
		}
		z[i+n] = Word(c)
	}

	var top Word
	for i := range z {
		w := z[i]
		z[i] = w<<1 | top
		top = w >> (wordBits - 1)
	}

	var c uint64
	for i := 0; i < n; i++ {
		sq := uint64(x[i]) * uint64(x[i])
		t := uint64(z[2*i]) + sq&wordMask + c
		z[2*i] = Word(t)
		c = t >> wordBits
		t = uint64(z[2*i+1]) + sq>>wordBits + c
		z[2*i+1] = Word(t)
		c = t >> wordBits
	}
	return z.norm()
}

func shlNat(x nat, s uint) nat {
	if len(x) == 0 {
		return nil
	}
	limbs := int(s / wordBits)
	shift := s % wordBits
	z := make(nat, len(x)+limbs+1)
	if shift == 0 {
		copy(z[limbs:], x)
		return z.norm()
	}
	var carry Word
	for i, w := range x {
		z[i+limbs] = w<<shift | carry
		carry = w >> (wordBits - shift)
	}
	z[len(x)+limbs] = carry
	return z.norm()
}

func shrNat(x nat, s uint) nat {
	limbs := int(s / wordBits)
	if limbs >= len(x) {
		return nil
	}
	shift := s % wordBits
	z := make(nat, len(x)-limbs)
	if shift == 0 {
		copy(z, x[limbs:])
		return z.norm()
	}
	for i := range z {
		w := x[i+limbs] >> shift
		if i+limbs+1 < len(x) {
			w |= x[i+limbs+1] << (wordBits - shift)
		}
		z[i] = w
	}
	return z.norm()
}

func divWordNat(x nat, d Word) (nat, Word) {
	q := make(nat, len(x))
	var r uint64
	for i := len(x) - 1; i >= 0; i-- {
		cur := r<<wordBits | uint64(x[i])
		q[i] = Word(cur / uint64(d))
		r = cur % uint64(d)
	}
	return q.norm(), Word(r)
}

// divNat returns the quotient and remainder of u / v using Knuth's
// Algorithm D (TAOCP vol. 2, 4.3.1). v must be non-zero.
func divNat(u, v nat) (q, r nat) {
	if cmpNat(u, v) < 0 {
		return nil, u.clone()
	}
	if len(v) == 1 {
		q, rw := divWordNat(u, v[0])
		return q, natFromUint64(uint64(rw))
	}

	// normalise so the top limb of the divisor has its high bit set
	s := uint(bits.LeadingZeros32(uint32(v[len(v)-1])))
	vn := shlNat(v, s)
	un := make(nat, len(u)+1)
	copy(un, shlNat(u, s))

	n := len(vn)
	m := len(u) - n
	q = make(nat, m+1)
	vTop := uint64(vn[n-1])
	vNext := uint64(vn[n-2])

	for j := m; j >= 0; j-- {
		num := uint64(un[j+n])<<wordBits | uint64(un[j+n-1])
		qhat := num / vTop
		rhat := num % vTop
		for qhat >= wordBase || qhat*vNext > (rhat<<wordBits|uint64(un[j+n-2])) {
			qhat--
			rhat += vTop
			if rhat >= wordBase {
				break
			}
		}

		var borrow, carry uint64
		for i := 0; i < n; i++ {
			p := qhat*uint64(vn[i]) + carry
			carry = p >> wordBits
			t := uint64(un[i+j]) - p&wordMask - borrow
			un[i+j] = Word(t)
			borrow = (t >> wordBits) & 1
		}
		top := int64(un[j+n]) - int64(carry) - int64(borrow)
		un[j+n] = Word(top)

		if top < 0 {
			// estimate was one too large
			qhat--
			var c uint64
			for i := 0; i < n; i++ {
				t := uint64(un[i+j]) + uint64(vn[i]) + c
				un[i+j] = Word(t)
				c = t >> wordBits
			}
			un[j+n] += Word(c)
		}
		q[j] = Word(qhat)
	}

	return q.norm(), shrNat(un[:n].norm(), s)
}

func natFromBytes(b []byte) nat {
	z := make(nat, (len(b)+3)/4)
	for i := 0; i < len(b); i++ {
		z[i/4] |= Word(b[len(b)-1-i]) << (8 * uint(i%4))
	}
	return z.norm()
}

func (z nat) byteLen() int {
	return (z.bitLen() + 7) / 8
}

// fillBytes writes z big-endian into buf, which must hold byteLen bytes.
func (z nat) fillBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	for i, w := range z {
		for k := 0; k < 4; k++ {
			idx := len(buf) - 1 - (i*4 + k)
			if idx < 0 {
				return
			}
			buf[idx] = byte(w >> (8 * uint(k)))
		}
	}
}
