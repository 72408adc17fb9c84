// Copyright (c) 2025 @AmarnathCJD

package vdf

import (
	"strconv"
	"strings"
)

// SignedQuery is the string whose hash signs a proof: the four result
// fields in alphabetical order, each key and value percent-encoded.
func SignedQuery(iterations, spendTimeMs int64, xHex string) string {
	fields := [...][2]string{
		{"runTimes", strconv.FormatInt(iterations, 10)},
		{"spendTime", strconv.FormatInt(spendTimeMs, 10)},
		{"t", strconv.FormatInt(iterations, 10)},
		{"x", xHex},
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(f[0]))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(f[1]))
	}
	return b.String()
}

// EscapeComponent percent-encodes s the way browsers' encodeURIComponent
// does: everything except A-Z a-z 0-9 and - _ . ! ~ * ' ( ) is escaped as
// UTF-8 bytes.
func EscapeComponent(s string) string {
	const upperhex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
