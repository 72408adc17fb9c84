// Copyright (c) 2025 @AmarnathCJD

package bignum

import "github.com/pkg/errors"

var (
	ErrParse            = errors.New("bignum: malformed number")
	ErrDivisionByZero   = errors.New("bignum: division by zero")
	ErrEncodingTooShort = errors.New("bignum: value does not fit in requested length")
	ErrNegativeExponent = errors.New("bignum: negative exponent")
	ErrNegativeModulus  = errors.New("bignum: modulus must be positive")
	ErrEvenModulus      = errors.New("bignum: montgomery reduction needs an odd modulus")
)
