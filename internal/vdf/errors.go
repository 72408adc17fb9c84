// Copyright (c) 2025 @AmarnathCJD

package vdf

import "github.com/pkg/errors"

var (
	ErrNotReady         = errors.New("vdf: proof not ready")
	ErrInvalidChallenge = errors.New("vdf: invalid challenge")
	ErrUnsupportedHash  = errors.New("vdf: unsupported hash function")
	ErrNoChallenge      = errors.New("vdf: response carries no challenge")
)
