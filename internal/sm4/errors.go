// Copyright (c) 2025 @AmarnathCJD

package sm4

import "github.com/pkg/errors"

var (
	ErrInvalidKeySize = errors.New("sm4: key must be 16 bytes")
	ErrInvalidLength  = errors.New("sm4: ciphertext is not a positive multiple of the block size")
	ErrInvalidPadding = errors.New("sm4: invalid padding")
)
