// Copyright (c) 2025 @AmarnathCJD

package utils

import (
	cr "crypto/rand"
	"math/big"
	"time"
)

const (
	rtidLength   = 32
	rtidAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// RandomString draws n characters uniformly from alphabet.
func RandomString(n int, alphabet string) string {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := cr.Int(cr.Reader, max)
		if err != nil {
			panic(err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// RandomRtid returns a request tracking id: 32 characters of [0-9A-Za-z].
func RandomRtid() string {
	return RandomString(rtidLength, rtidAlphabet)
}

// UnixMillis is the JavaScript Date.now() value for t.
func UnixMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
